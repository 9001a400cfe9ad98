package pefmt

import "github.com/gogo2464/LIEF/internal/bytestream"

// LoadConfigVersion tags which historical variant a Load Configuration
// record decoded as (§9 "versioned variant... size-to-tag selection table").
type LoadConfigVersion int

const (
	LoadConfigBase LoadConfigVersion = iota
	LoadConfigV0
	LoadConfigV1
	LoadConfigV2
	LoadConfigV3
	LoadConfigV4
	LoadConfigV5
	LoadConfigV6
	LoadConfigV7
)

// LoadConfiguration is the versioned Load Configuration object exposed
// on Binary (§3, §4.8). Fields past what a given version's declared
// size actually covers are left zero rather than read out of bounds.
type LoadConfiguration struct {
	Version LoadConfigVersion
	Size    uint32

	TimeDateStamp                 uint32
	GlobalFlagsClear              uint32
	GlobalFlagsSet                uint32
	CriticalSectionDefaultTimeout uint32

	// SafeSEH / GS cookie fields. Like every field here, each is read
	// whenever the declared size covers its offset, whatever the Version.
	SecurityCookie uint64
	SEHandlerTable uint64
	SEHandlerCount uint64

	// Control Flow Guard fields.
	GuardCFCheckFunctionPointer uint64
	GuardCFFunctionTable        uint64
	GuardCFFunctionCount        uint64
	GuardFlags                  uint32
}

// loadConfigSizeEntry pairs a known on-disk `size` value with its
// version tag.
type loadConfigSizeEntry struct {
	version LoadConfigVersion
	size    uint32
}

// loadConfigSizeTable32/64 are ordered largest-size-first so §4.8 step
// 2's "largest size <= size" rule is a simple linear scan.
var loadConfigSizeTable32 = []loadConfigSizeEntry{
	{LoadConfigV7, 0x140},
	{LoadConfigV6, 0x120},
	{LoadConfigV5, 0x104},
	{LoadConfigV4, 0x0f8},
	{LoadConfigV3, 0x0d8},
	{LoadConfigV2, 0x068},
	{LoadConfigV1, 0x048},
	{LoadConfigV0, 0x040},
}

var loadConfigSizeTable64 = []loadConfigSizeEntry{
	{LoadConfigV7, 0x1c0},
	{LoadConfigV6, 0x190},
	{LoadConfigV5, 0x170},
	{LoadConfigV4, 0x148},
	{LoadConfigV3, 0x118},
	{LoadConfigV2, 0x0a8},
	{LoadConfigV1, 0x078},
	{LoadConfigV0, 0x048},
}

// baseLoadConfigSize is the smallest common record (§4.8 step 3
// "unknown/too-small sizes decode the common base record").
const baseLoadConfigSize = 0x1c

// selectLoadConfigVersion picks the version whose declared size is the
// largest size <= size (§4.8 step 2, monotone selection). A size of 0
// (testable property #12) never matches any table entry and falls
// through to LoadConfigBase.
func selectLoadConfigVersion(is64 bool, size uint32) LoadConfigVersion {
	table := loadConfigSizeTable32
	if is64 {
		table = loadConfigSizeTable64
	}
	for _, entry := range table {
		if entry.size <= size {
			return entry.version
		}
	}
	return LoadConfigBase
}

// parseLoadConfig implements §4.8: peek the declared size, select a
// version, then decode the common fields bounded by that size.
func parseLoadConfig(s *bytestream.Stream, b *Binary, dir Directory) (*LoadConfiguration, error) {
	offset, ok := b.RVAToOffset(dir.RVA)
	if !ok {
		return nil, NotFoundError("load_config", errRVANotMapped)
	}

	size, err := bytestream.Peek[uint32](s, int64(offset))
	if err != nil {
		return nil, ReadError("load_config", err)
	}

	is64 := b.Variant == VariantPE32Plus
	lc := &LoadConfiguration{Size: size}

	if size < baseLoadConfigSize {
		lc.Version = LoadConfigBase
		return lc, nil
	}
	lc.Version = selectLoadConfigVersion(is64, size)

	read32 := func(rel int64) uint32 {
		if rel+4 > int64(size) {
			return 0
		}
		v, err := bytestream.Peek[uint32](s, int64(offset)+rel)
		if err != nil {
			return 0
		}
		return v
	}
	read64 := func(rel int64) uint64 {
		if rel+8 > int64(size) {
			return 0
		}
		v, err := bytestream.Peek[uint64](s, int64(offset)+rel)
		if err != nil {
			return 0
		}
		return v
	}

	lc.TimeDateStamp = read32(4)
	lc.GlobalFlagsClear = read32(12)
	lc.GlobalFlagsSet = read32(16)
	lc.CriticalSectionDefaultTimeout = read32(20)

	// Offsets below are IMAGE_LOAD_CONFIG_DIRECTORY32/64's actual layout
	// (DeCommitFreeBlockThreshold..EditList sit between the base block
	// and SecurityCookie, widening on PE32+).
	if is64 {
		lc.SecurityCookie = read64(0x58)
		lc.SEHandlerTable = read64(0x60)
		lc.SEHandlerCount = read64(0x68)
		lc.GuardCFCheckFunctionPointer = read64(0x70)
		lc.GuardCFFunctionTable = read64(0x80)
		lc.GuardCFFunctionCount = read64(0x88)
		lc.GuardFlags = read32(0x90)
	} else {
		lc.SecurityCookie = uint64(read32(0x3c))
		lc.SEHandlerTable = uint64(read32(0x40))
		lc.SEHandlerCount = uint64(read32(0x44))
		lc.GuardCFCheckFunctionPointer = uint64(read32(0x48))
		lc.GuardCFFunctionTable = uint64(read32(0x50))
		lc.GuardCFFunctionCount = uint64(read32(0x54))
		lc.GuardFlags = read32(0x58)
	}

	return lc, nil
}
