// The xtlvet command runs the castcheck analyzer.
//
//	xtlvet ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/reoring/xtl/castcheck"
)

func main() { singlechecker.Main(castcheck.Analyzer) }
