package evla

import (
	"regexp"

	"github.com/leapstack-labs/widarcfg/pkg/core"
)

// Header anchors. These appear once near the top of every script.
var (
	oldDialectPattern = regexp.MustCompile(`loif\d+ = LoIfSetup`)
	arrayConfPattern  = regexp.MustCompile(`#   Array Configurations: (.+?)\n`)
	projectPattern    = regexp.MustCompile(`# EVLA PROJECT (.+?), DB ID (\d+?)\n`)
	mjdPattern        = regexp.MustCompile(`#   Assumed Script Start: .+?MJD ([\.\d]+?)\)\n`)
	tuningPattern     = regexp.MustCompile(`tuningOffsetMHz\s?=\s?([-\d\.e]+)`)
)

const scanLoopMarker = "for iter1 in range"

// Scan block line patterns, shared by both dialects.
var (
	scanHeaderPattern = regexp.MustCompile(`^\s*# Scan num\. (\d+), '(.*?)', DB ID (\d+)`)
	scanTimePattern   = regexp.MustCompile(`^\s*# Approx sidereal time: total = (\d+)s, slew = (\d+)s, on source = (\d+)s`)
	scanIntentPattern = regexp.MustCompile(`^\s*intents\.addIntent\('ScanIntent="(.+?)"'\)`)
)

// grammar is the set of record patterns that differ between dialects.
type grammar struct {
	// setup captures id, mode, receiver and the four baseband frequencies
	// followed by the flag.
	setup *regexp.Regexp
	// offset captures id and four WIDAR offset frequencies.
	offset *regexp.Regexp
	// selection matches the line that switches the active LOIF setup.
	selection *regexp.Regexp
}

var grammars = map[core.Dialect]grammar{
	core.DialectOld: {
		setup: regexp.MustCompile(
			`loif(\d+) = ` +
				`LoIfSetup\((\S+?),"(\S+?)",(\S+?),(\S+?),(\S+?),(\S+?),(\S+?)\)`),
		offset: regexp.MustCompile(
			`loif(\d+)` +
				`\.setWidarOffsetFreq\((\S+?),(\S+?),(\S+?),(\S+?)\)`),
		selection: regexp.MustCompile(`^\s*subarray\.setLoIfSetup\(loif(\d+)\)`),
	},
	core.DialectNew: {
		setup: regexp.MustCompile(
			`loifs\['loif(\d+)'\] = ` +
				`LoIfSetup\((\S+?),"(\S+?)",(\S+?),(\S+?),(\S+?),(\S+?),(\S+?)\)`),
		offset: regexp.MustCompile(
			`loifs\['loif(\d+)'\]` +
				`\.setWidarOffsetFreq\((\S+?),(\S+?),(\S+?),(\S+?)\)`),
		selection: regexp.MustCompile(`^\s*loifName = 'loif(\d+)'`),
	},
}

func grammarFor(d core.Dialect) grammar {
	return grammars[d]
}
