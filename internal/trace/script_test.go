package trace

import (
	"strings"
	"testing"
)

func TestParseBasicOps(t *testing.T) {
	r := strings.NewReader("a 1 64\nf 1\na 2 32\nr 2 128\n")

	script, err := parse(r)
	if err != nil {
		t.Fatalf("parse() error = %v", err)
	}

	if len(script.Ops) != 4 {
		t.Fatalf("len(Ops) = %d, want 4", len(script.Ops))
	}

	want := []Op{
		{Kind: OpAlloc, ID: 1, Bytes: 64, Line: 1},
		{Kind: OpFree, ID: 1, Line: 2},
		{Kind: OpAlloc, ID: 2, Bytes: 32, Line: 3},
		{Kind: OpResize, ID: 2, Bytes: 128, Line: 4},
	}

	for i, op := range want {
		if script.Ops[i] != op {
			t.Errorf("Ops[%d] = %+v, want %+v", i, script.Ops[i], op)
		}
	}
}

func TestParseIgnoresBlankLinesAndComments(t *testing.T) {
	r := strings.NewReader("\n# a comment\na 1 16\n\n")

	script, err := parse(r)
	if err != nil {
		t.Fatalf("parse() error = %v", err)
	}

	if len(script.Ops) != 1 {
		t.Fatalf("len(Ops) = %d, want 1", len(script.Ops))
	}
}

func TestParseVersionDirective(t *testing.T) {
	r := strings.NewReader("version: 1.2.3\na 1 16\n")

	script, err := parse(r)
	if err != nil {
		t.Fatalf("parse() error = %v", err)
	}

	if script.Version == nil {
		t.Fatal("Version not parsed")
	}

	if script.Version.String() != "1.2.3" {
		t.Fatalf("Version = %s, want 1.2.3", script.Version.String())
	}

	if len(script.Ops) != 1 {
		t.Fatalf("len(Ops) = %d, want 1", len(script.Ops))
	}
}

func TestParseMalformedLineFails(t *testing.T) {
	cases := []string{
		"x 1 2",
		"a 1",
		"a notanumber 2",
		"f",
		"r 1",
	}

	for _, line := range cases {
		if _, err := parse(strings.NewReader(line + "\n")); err == nil {
			t.Errorf("parse(%q) should fail", line)
		}
	}
}

func TestParseInvalidVersionFails(t *testing.T) {
	if _, err := parse(strings.NewReader("version: not-a-semver\na 1 1\n")); err == nil {
		t.Fatal("parse() should reject a malformed version directive")
	}
}
