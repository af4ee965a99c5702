// Package cuid generates collision-resistant ids of the form
// c + timestamp + counter + fingerprint + random, all base36.
package cuid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/sha3"
)

const (
	prefix    = "c"
	blockSize = 4
	base      = 36

	// Length of every generated id.
	Length = 25
)

// discreteValues is 36^4, the number of values a single block can hold.
const discreteValues = 1679616

var (
	counter     atomic.Uint32
	fingerprint = hostFingerprint()
	pattern     = regexp.MustCompile(`^c[a-z0-9]{24}$`)
)

func init() {
	counter.Store(randomUint32() % discreteValues)
}

// New returns a fresh id. It is safe for concurrent use.
func New() string {
	var b strings.Builder
	b.Grow(Length)
	b.WriteString(prefix)
	b.WriteString(pad(strconv.FormatInt(time.Now().UnixMilli(), base), 2*blockSize))
	b.WriteString(pad(strconv.FormatUint(uint64(nextCount()), base), blockSize))
	b.WriteString(fingerprint)
	b.WriteString(randomBlock())
	b.WriteString(randomBlock())
	return b.String()
}

// IsCuid reports whether s has the shape of an id produced by New.
func IsCuid(s string) bool {
	return pattern.MatchString(s)
}

func nextCount() uint32 {
	return counter.Add(1) % discreteValues
}

func randomBlock() string {
	return pad(strconv.FormatUint(uint64(randomUint32()%discreteValues), base), blockSize)
}

func randomUint32() uint32 {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand only fails when the OS entropy source is unusable.
		panic(fmt.Sprintf("cuid: reading random bytes: %v", err))
	}
	return binary.BigEndian.Uint32(buf[:])
}

// hostFingerprint hashes hostname and pid into one block so ids from
// different processes diverge even within the same millisecond.
func hostFingerprint() string {
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	sum := sha3.Sum256([]byte(host + ":" + strconv.Itoa(os.Getpid())))
	v := binary.BigEndian.Uint32(sum[:4]) % discreteValues
	return pad(strconv.FormatUint(uint64(v), base), blockSize)
}

// pad left-fills s with zeros and keeps the trailing size characters.
func pad(s string, size int) string {
	if len(s) < size {
		s = strings.Repeat("0", size-len(s)) + s
	}
	return s[len(s)-size:]
}
