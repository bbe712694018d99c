package zstdstream

import (
	"fmt"
	"runtime"
)

// CParameter selects an advanced compression parameter.
//
// The right way to make these enums is by importing the zstd.h header and
// assigning their values from the cgo interface. However, cgo cannot
// express C enum constants as Go constants, so the values are mirrored
// here and checked against the engine's own validation at set time.
type CParameter int

const (
	/* Set compression parameters according to a pre-defined level table.
	 * Exact parameters are dynamically determined from the level and the
	 * source size when known. Special: value 0 means default (level 3).
	 * Negative levels trade ratio for speed.
	 * Note: manually set parameters stick; the level only steers the
	 * ones not explicitly set. */
	ZSTD_c_compressionLevel CParameter = 100

	/* Maximum allowed back-reference distance, as a power of 2. Sets the
	 * memory budget for streaming decompression on the other side.
	 * Special: value 0 means default. */
	ZSTD_c_windowLog CParameter = 101

	/* Size of the initial probe table, as a power of 2.
	 * Special: value 0 means default. */
	ZSTD_c_hashLog CParameter = 102

	/* Size of the multi-probe search table, as a power of 2.
	 * Special: value 0 means default. */
	ZSTD_c_chainLog CParameter = 103

	/* Number of search attempts, as a power of 2.
	 * Special: value 0 means default. */
	ZSTD_c_searchLog CParameter = 104

	/* Minimum size of searched matches.
	 * Special: value 0 means default. */
	ZSTD_c_minMatch CParameter = 105

	/* Strategy-dependent optimization target.
	 * Special: value 0 means default. */
	ZSTD_c_targetLength CParameter = 106

	/* See the Strategy values. Special: value 0 means default. */
	ZSTD_c_strategy CParameter = 107

	/* Enable long distance matching. Improves ratio for large inputs at
	 * the price of memory, and raises the effective windowLog. */
	ZSTD_c_enableLongDistanceMatching CParameter = 160
	ZSTD_c_ldmHashLog                 CParameter = 161
	ZSTD_c_ldmMinMatch                CParameter = 162
	ZSTD_c_ldmBucketSizeLog           CParameter = 163
	ZSTD_c_ldmHashRateLog             CParameter = 164

	/* Frame parameters. Content size is written into the frame header
	 * when known (see Compressor.SetPledgedSrcSize); the checksum flag
	 * appends a 4-byte content checksum to every frame. */
	ZSTD_c_contentSizeFlag CParameter = 200
	ZSTD_c_checksumFlag    CParameter = 201
	ZSTD_c_dictIDFlag      CParameter = 202

	/* Multi-threaded compression inside the engine. nbWorkers 0 keeps
	 * everything on the calling goroutine's thread; with workers the
	 * call is still synchronous at this API's boundary. */
	ZSTD_c_nbWorkers  CParameter = 400
	ZSTD_c_jobSize    CParameter = 401
	ZSTD_c_overlapLog CParameter = 402
)

// cParameterNames is used for error reporting.
var cParameterNames = map[CParameter]string{
	ZSTD_c_compressionLevel:           "compressionLevel",
	ZSTD_c_windowLog:                  "windowLog",
	ZSTD_c_hashLog:                    "hashLog",
	ZSTD_c_chainLog:                   "chainLog",
	ZSTD_c_searchLog:                  "searchLog",
	ZSTD_c_minMatch:                   "minMatch",
	ZSTD_c_targetLength:               "targetLength",
	ZSTD_c_strategy:                   "strategy",
	ZSTD_c_enableLongDistanceMatching: "enableLongDistanceMatching",
	ZSTD_c_ldmHashLog:                 "ldmHashLog",
	ZSTD_c_ldmMinMatch:                "ldmMinMatch",
	ZSTD_c_ldmBucketSizeLog:           "ldmBucketSizeLog",
	ZSTD_c_ldmHashRateLog:             "ldmHashRateLog",
	ZSTD_c_contentSizeFlag:            "contentSizeFlag",
	ZSTD_c_checksumFlag:               "checksumFlag",
	ZSTD_c_dictIDFlag:                 "dictIDFlag",
	ZSTD_c_nbWorkers:                  "nbWorkers",
	ZSTD_c_jobSize:                    "jobSize",
	ZSTD_c_overlapLog:                 "overlapLog",
}

func (p CParameter) String() string {
	if name, ok := cParameterNames[p]; ok {
		return name
	}
	return fmt.Sprintf("cParameter(%d)", int(p))
}

// DParameter selects an advanced decompression parameter.
type DParameter int

const (
	/* Largest window size the decoder accepts, as a power of 2. Frames
	 * requiring more fail with a windowTooLarge engine error instead of
	 * allocating unbounded memory. Special: value 0 means default
	 * (engine default is 2^27). */
	ZSTD_d_windowLogMax DParameter = 100
)

func (p DParameter) String() string {
	if p == ZSTD_d_windowLogMax {
		return "windowLogMax"
	}
	return fmt.Sprintf("dParameter(%d)", int(p))
}

// Strategy values for ZSTD_c_strategy, from fastest to strongest.
type Strategy int

const (
	ZSTD_fast     Strategy = 1
	ZSTD_dfast    Strategy = 2
	ZSTD_greedy   Strategy = 3
	ZSTD_lazy     Strategy = 4
	ZSTD_lazy2    Strategy = 5
	ZSTD_btlazy2  Strategy = 6
	ZSTD_btopt    Strategy = 7
	ZSTD_btultra  Strategy = 8
	ZSTD_btultra2 Strategy = 9
)

// DefaultCompressionLevel is the engine's default (ZSTD_CLEVEL_DEFAULT).
const DefaultCompressionLevel = 3

// parameterBounds describes the accepted range for one parameter.
type parameterBounds struct {
	min, max int
}

func (b parameterBounds) contains(v int) bool { return v >= b.min && v <= b.max }

// Architecture-aware maxima: 32-bit targets cannot address the largest
// windows.
func windowLogBounds() parameterBounds {
	if runtime.GOARCH == "386" || runtime.GOARCH == "arm" {
		return parameterBounds{10, 30}
	}
	return parameterBounds{10, 31}
}

func chainLogBounds() parameterBounds {
	if runtime.GOARCH == "386" || runtime.GOARCH == "arm" {
		return parameterBounds{6, 29}
	}
	return parameterBounds{6, 30}
}

var cParameterBounds = map[CParameter]parameterBounds{
	ZSTD_c_windowLog:                  windowLogBounds(),
	ZSTD_c_hashLog:                    {6, 30},
	ZSTD_c_chainLog:                   chainLogBounds(),
	ZSTD_c_searchLog:                  {1, 30},
	ZSTD_c_minMatch:                   {3, 7},
	ZSTD_c_targetLength:               {0, 131072},
	ZSTD_c_strategy:                   {int(ZSTD_fast), int(ZSTD_btultra2)},
	ZSTD_c_enableLongDistanceMatching: {0, 1},
	ZSTD_c_ldmHashLog:                 {6, 30},
	ZSTD_c_ldmMinMatch:                {4, 4096},
	ZSTD_c_ldmBucketSizeLog:           {1, 8},
	ZSTD_c_ldmHashRateLog:             {0, 30},
	ZSTD_c_contentSizeFlag:            {0, 1},
	ZSTD_c_checksumFlag:               {0, 1},
	ZSTD_c_dictIDFlag:                 {0, 1},
	ZSTD_c_nbWorkers:                  {0, 200},
	ZSTD_c_jobSize:                    {0, 512 * 1024 * 1024},
	ZSTD_c_overlapLog:                 {0, 9},
}

// clampCompressionLevel pins a level to the engine's supported range. The
// engine clamps this one parameter itself rather than rejecting it, and
// the Go surface mirrors that: levels never fail, they saturate.
func clampCompressionLevel(level int) int {
	if level < minCLevel {
		return minCLevel
	}
	if level > maxCLevel {
		return maxCLevel
	}
	return level
}

// validateCParameter checks a value against the mirrored bounds before it
// reaches the engine. Zero is accepted for every parameter ("use
// default"). The compression level is clamped, never rejected.
func validateCParameter(op string, param CParameter, value int) (int, error) {
	if param == ZSTD_c_compressionLevel {
		return clampCompressionLevel(value), nil
	}
	bounds, known := cParameterBounds[param]
	if !known {
		return 0, &ConfigError{
			Op:     op,
			Param:  param.String(),
			Reason: "unknown compression parameter",
		}
	}
	if value == 0 || bounds.contains(value) {
		return value, nil
	}
	return 0, &ConfigError{
		Op:     op,
		Param:  param.String(),
		Reason: fmt.Sprintf("value %d out of range [%d, %d]", value, bounds.min, bounds.max),
	}
}

var dParameterBounds = map[DParameter]parameterBounds{
	ZSTD_d_windowLogMax: windowLogBounds(),
}

func validateDParameter(op string, param DParameter, value int) (int, error) {
	bounds, known := dParameterBounds[param]
	if !known {
		return 0, &ConfigError{
			Op:     op,
			Param:  param.String(),
			Reason: "unknown decompression parameter",
		}
	}
	if value == 0 || bounds.contains(value) {
		return value, nil
	}
	return 0, &ConfigError{
		Op:     op,
		Param:  param.String(),
		Reason: fmt.Sprintf("value %d out of range [%d, %d]", value, bounds.min, bounds.max),
	}
}
