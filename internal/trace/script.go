// Package trace loads and replays line-oriented allocator traces against an
// allocator.Heap, and reports summary statistics for the run.
//
// A trace file is one operation per line:
//
//	a <id> <bytes>   allocate <bytes> bytes, remembered under <id>
//	f <id>           free the allocation remembered under <id>
//	r <id> <bytes>   resize the allocation remembered under <id>
//
// Blank lines and lines starting with # are ignored. An optional directive
// on its own line, before any operation, pins the trace format version:
//
//	version: <semver>
package trace

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	alloerrors "github.com/orizon-lang/uallocbench/internal/errors"
)

// OpKind identifies one trace operation.
type OpKind int

const (
	OpAlloc OpKind = iota
	OpFree
	OpResize
)

// Op is one parsed trace line.
type Op struct {
	Kind  OpKind
	ID    int
	Bytes int
	Line  int
}

// Script is a parsed trace: an optional declared format version and the
// ordered operations to replay.
type Script struct {
	Version *semver.Version
	Ops     []Op
}

// Load parses the trace file at path.
func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parse(f)
}

func parse(r io.Reader) (*Script, error) {
	script := &Script{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	sawOp := false

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !sawOp {
			if rest, ok := strings.CutPrefix(line, "version:"); ok {
				v, err := semver.NewVersion(strings.TrimSpace(rest))
				if err != nil {
					return nil, alloerrors.InvalidTraceLine(lineNo, line)
				}

				script.Version = v

				continue
			}
		}

		op, err := parseOp(lineNo, line)
		if err != nil {
			return nil, err
		}

		sawOp = true

		script.Ops = append(script.Ops, op)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return script, nil
}

func parseOp(lineNo int, line string) (Op, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Op{}, alloerrors.InvalidTraceLine(lineNo, line)
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return Op{}, alloerrors.InvalidTraceLine(lineNo, line)
	}

	switch fields[0] {
	case "a":
		if len(fields) != 3 {
			return Op{}, alloerrors.InvalidTraceLine(lineNo, line)
		}

		bytes, err := strconv.Atoi(fields[2])
		if err != nil {
			return Op{}, alloerrors.InvalidTraceLine(lineNo, line)
		}

		return Op{Kind: OpAlloc, ID: id, Bytes: bytes, Line: lineNo}, nil
	case "f":
		if len(fields) != 2 {
			return Op{}, alloerrors.InvalidTraceLine(lineNo, line)
		}

		return Op{Kind: OpFree, ID: id, Line: lineNo}, nil
	case "r":
		if len(fields) != 3 {
			return Op{}, alloerrors.InvalidTraceLine(lineNo, line)
		}

		bytes, err := strconv.Atoi(fields[2])
		if err != nil {
			return Op{}, alloerrors.InvalidTraceLine(lineNo, line)
		}

		return Op{Kind: OpResize, ID: id, Bytes: bytes, Line: lineNo}, nil
	default:
		return Op{}, alloerrors.InvalidTraceLine(lineNo, line)
	}
}
