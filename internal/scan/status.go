package scan

// Status classifies a slot. A scan leaves every slot in one of Empty,
// BadCompressionType, DecodeError, InPlace, WrongSlotSameRegion or WrongRegion;
// the table builder later moves recoverable slots to Relocated.
type Status uint8

const (
	Unknown             Status = iota
	Empty                      // entry is all zero
	BadCompressionType         // tag outside {gzip, zlib, none}
	DecodeError                // range, decompression or document failure
	InPlace                    // declared position matches the slot
	WrongSlotSameRegion        // declared position is another slot of this region
	WrongRegion                // declared position is outside this region
	Relocated                  // written into the rebuilt table
)

func (s Status) String() string {
	switch s {
	case Empty:
		return "EMPTY"
	case BadCompressionType:
		return "BAD_COMPRESSION"
	case DecodeError:
		return "DECODE_ERROR"
	case InPlace:
		return "IN_PLACE"
	case WrongSlotSameRegion:
		return "WRONG_SLOT"
	case WrongRegion:
		return "WRONG_REGION"
	case Relocated:
		return "RELOCATED"
	default:
		return "UNKNOWN"
	}
}

// MarshalText lets statuses appear by name in JSON reports.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Recoverable reports whether the slot's payload belongs in the rebuilt table.
func (s Status) Recoverable() bool {
	return s == InPlace || s == WrongSlotSameRegion
}

// Fault reports whether the slot is dropped from the rebuilt table even
// though its entry was not empty.
func (s Status) Fault() bool {
	return s == BadCompressionType || s == DecodeError || s == WrongRegion
}

// Counts tallies slots per status.
type Counts struct {
	Empty              int `json:"empty"`
	BadCompressionType int `json:"bad_compression"`
	DecodeError        int `json:"decode_error"`
	InPlace            int `json:"in_place"`
	WrongSlot          int `json:"wrong_slot"`
	WrongRegion        int `json:"wrong_region"`
	Relocated          int `json:"relocated"`
}

// Add counts one slot with status s.
func (c *Counts) Add(s Status) {
	switch s {
	case Empty:
		c.Empty++
	case BadCompressionType:
		c.BadCompressionType++
	case DecodeError:
		c.DecodeError++
	case InPlace:
		c.InPlace++
	case WrongSlotSameRegion:
		c.WrongSlot++
	case WrongRegion:
		c.WrongRegion++
	case Relocated:
		c.Relocated++
	case Unknown:
	}
}

// Merge adds other into c.
func (c *Counts) Merge(other Counts) {
	c.Empty += other.Empty
	c.BadCompressionType += other.BadCompressionType
	c.DecodeError += other.DecodeError
	c.InPlace += other.InPlace
	c.WrongSlot += other.WrongSlot
	c.WrongRegion += other.WrongRegion
	c.Relocated += other.Relocated
}

// Faults is the number of non-empty slots that cannot be kept.
func (c Counts) Faults() int {
	return c.BadCompressionType + c.DecodeError + c.WrongRegion
}
