// Package chunkdoc reads the fields of a decompressed chunk document that the
// repair engine trusts: the chunk's absolute xPos and zPos.
package chunkdoc

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Tnze/go-mc/nbt"
)

var (
	// ErrNoPosition indicates a well-formed document without xPos/zPos.
	ErrNoPosition = errors.New("chunkdoc: position fields missing")
	// ErrMalformed indicates the document could not be decoded as NBT.
	ErrMalformed = errors.New("chunkdoc: malformed document")
)

// Position is the absolute chunk position declared by a payload.
type Position struct {
	X int32
	Z int32
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Z)
}

// Since 1.18 the position sits at the root of the document; older worlds
// nest it under a "Level" compound. Pointers distinguish absent from zero.
type document struct {
	XPos  *int32 `nbt:"xPos"`
	ZPos  *int32 `nbt:"zPos"`
	Level *level `nbt:"Level"`
}

type level struct {
	XPos *int32 `nbt:"xPos"`
	ZPos *int32 `nbt:"zPos"`
}

// ReadPosition decodes b and returns the declared chunk position. Unknown
// fields are skipped.
func ReadPosition(b []byte) (Position, error) {
	var doc document
	if _, err := nbt.NewDecoder(bytes.NewReader(b)).Decode(&doc); err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.XPos != nil && doc.ZPos != nil {
		return Position{X: *doc.XPos, Z: *doc.ZPos}, nil
	}
	if doc.Level != nil && doc.Level.XPos != nil && doc.Level.ZPos != nil {
		return Position{X: *doc.Level.XPos, Z: *doc.Level.ZPos}, nil
	}
	return Position{}, ErrNoPosition
}

type modernDoc struct {
	DataVersion int32  `nbt:"DataVersion"`
	XPos        int32  `nbt:"xPos"`
	ZPos        int32  `nbt:"zPos"`
	Status      string `nbt:"Status"`
}

type legacyDoc struct {
	DataVersion int32 `nbt:"DataVersion"`
	Level       struct {
		XPos int32 `nbt:"xPos"`
		ZPos int32 `nbt:"zPos"`
	} `nbt:"Level"`
}

// Encode builds a minimal chunk document declaring pos. With legacy set the
// position is nested under "Level" as in pre-1.18 worlds.
func Encode(pos Position, legacy bool) ([]byte, error) {
	if legacy {
		var doc legacyDoc
		doc.DataVersion = 2586
		doc.Level.XPos = pos.X
		doc.Level.ZPos = pos.Z
		return nbt.Marshal(doc)
	}
	return nbt.Marshal(modernDoc{
		DataVersion: 3953,
		XPos:        pos.X,
		ZPos:        pos.Z,
		Status:      "minecraft:full",
	})
}
