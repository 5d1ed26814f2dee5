package chat

import (
	"strings"
	"testing"
)

var (
	testPrefixes = []string{"P1 ", "P2 ", "P3 "}
	testSuffixes = []string{" S1", " S2"}
)

func TestDecorator_Deterministic(t *testing.T) {
	calls := 0
	picks := []int{2, 1}
	d := NewDecorator(testPrefixes, testSuffixes, WithIntn(func(n int) int {
		v := picks[calls]
		calls++
		return v
	}))

	if got := d.Decorate("reply"); got != "P3 reply S2" {
		t.Errorf("Decorate() = %q", got)
	}
}

func TestDecorator_RoundTripProperty(t *testing.T) {
	d := NewDecorator(testPrefixes, testSuffixes)
	reply := "the raw <reply> & more"

	for i := 0; i < 200; i++ {
		got := d.Decorate(reply)
		if !isDecorated(got, reply, testPrefixes, testSuffixes) {
			t.Fatalf("Decorate() = %q is not prefix+reply+suffix", got)
		}
	}
}

func TestDecorator_CoversEveryChoice(t *testing.T) {
	d := NewDecorator(testPrefixes, testSuffixes)
	seenPrefix := map[string]bool{}
	seenSuffix := map[string]bool{}

	for i := 0; i < 500; i++ {
		got := d.Decorate("x")
		for _, p := range testPrefixes {
			if strings.HasPrefix(got, p) {
				seenPrefix[p] = true
			}
		}
		for _, s := range testSuffixes {
			if strings.HasSuffix(got, s) {
				seenSuffix[s] = true
			}
		}
	}

	if len(seenPrefix) != len(testPrefixes) || len(seenSuffix) != len(testSuffixes) {
		t.Errorf("draws not covering the sets: prefixes %v suffixes %v", seenPrefix, seenSuffix)
	}
}

func TestDecorator_EmptySets(t *testing.T) {
	d := NewDecorator(nil, nil)
	if got := d.Decorate("bare"); got != "bare" {
		t.Errorf("Decorate() = %q, want bare", got)
	}
}

func TestDecorator_CopiesSets(t *testing.T) {
	prefixes := []string{"a "}
	d := NewDecorator(prefixes, nil)
	prefixes[0] = "changed "

	if got := d.Decorate("x"); got != "a x" {
		t.Errorf("decorator should own its sets, got %q", got)
	}
	if p := d.Prefixes(); len(p) != 1 || p[0] != "a " {
		t.Errorf("Prefixes() = %v", p)
	}
}

// isDecorated reports whether s is some prefix + reply + some suffix
func isDecorated(s, reply string, prefixes, suffixes []string) bool {
	for _, p := range prefixes {
		for _, suf := range suffixes {
			if s == p+reply+suf {
				return true
			}
		}
	}
	return false
}
