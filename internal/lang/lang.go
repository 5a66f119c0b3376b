// Package lang defines the source languages the tool can scaffold and
// scan, along with the entry-point detection heuristic for each.
package lang

import (
	"fmt"
	"regexp"
)

// Language describes a supported source language: its file extension,
// its entry-point detection heuristic and its scaffold stub.
type Language struct {
	Name string
	Ext  string

	detect func(src []byte) bool
	stub   string
}

var (
	goPackage = regexp.MustCompile(`(?m)^package main\b`)
	goMain    = regexp.MustCompile(`(?m)^func main\s*\(`)
	rustMain  = regexp.MustCompile(`(?m)^(pub\s+)?fn\s+main\s*\(`)
)

// Go source files are binary targets when they declare package main and
// a top-level func main.
var Go = Language{
	Name: "go",
	Ext:  ".go",
	detect: func(src []byte) bool {
		return goPackage.Match(src) && goMain.Match(src)
	},
	stub: "package main\n\nfunc main() {\n}\n",
}

// Rust source files are binary targets when they define a top-level
// fn main.
var Rust = Language{
	Name:   "rust",
	Ext:    ".rs",
	detect: func(src []byte) bool { return rustMain.Match(src) },
	stub:   "fn main() {\n}\n",
}

// HasEntryPoint reports whether src defines the conventional
// entry-point function. This is a line-oriented heuristic, not a
// parser: entry points with unusual formatting can be missed, which
// callers accept.
func (l Language) HasEntryPoint(src []byte) bool {
	return l.detect(src)
}

// Stub returns the content of a minimal new binary-target source file.
func (l Language) Stub() []byte {
	return []byte(l.stub)
}

// ByName returns the language registered under name.
func ByName(name string) (Language, error) {
	for _, l := range []Language{Go, Rust} {
		if l.Name == name {
			return l, nil
		}
	}
	return Language{}, fmt.Errorf("unsupported language: %s (must be go or rust)", name)
}
