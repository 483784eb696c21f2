// Package format houses low-level decoders for the Anvil region file format
// (.mca). The goal is to keep the parsing focused and allocation-free so the
// scanner and the table builder can orchestrate the data at a higher level.
package format

const (
	// SectorSize is the allocation unit of a region file. Payload offsets and
	// lengths in the location table are expressed in sectors.
	SectorSize = 4096

	// GridSize is the number of chunks along each axis of a region.
	GridSize = 32

	// SlotCount is the number of entries in the location table.
	SlotCount = GridSize * GridSize

	// EntrySize is the size of one location table entry in bytes.
	EntrySize = 4

	// TableSize is the size of the location table at the start of the file.
	TableSize = SlotCount * EntrySize

	// MaxSectorOffset is the largest offset a 24-bit entry can address.
	MaxSectorOffset = 1<<24 - 1
)

// Location table entry layout (big-endian):
//
//	Offset  Size  Field
//	0x00    3     Sector offset of the payload (0 = unused)
//	0x03    1     Payload length in sectors
const (
	EntryOffsetField = 0x00
	EntryCountField  = 0x03
)

// Payload header layout, at SectorOffset*SectorSize (big-endian):
//
//	Offset  Size  Field
//	0x00    4     Payload length in bytes, including the compression byte
//	0x04    1     Compression tag (1 = gzip, 2 = zlib, 3 = uncompressed)
//	0x05    ...   Compressed NBT document
const (
	PayloadLengthField      = 0x00
	PayloadCompressionField = 0x04
	PayloadHeaderSize       = 0x05
)
