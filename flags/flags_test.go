/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package flags

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCatalog = Catalog{
	"video": {{Name: "autoplay", Default: true}, {Name: "loop", Default: true}, {Name: "mute"}},
	"image": {{Name: "nsfw"}},
}

func TestNormaliseProcessor(t *testing.T) {
	tests := map[string]string{
		"video":      "video",
		"video/h264": "video",
		" Image/PNG": "image",
		"":           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormaliseProcessor(in), in)
	}
}

func TestCatalog(t *testing.T) {
	assert.Equal(t, []string{"autoplay", "loop", "mute"}, testCatalog.Names("video/webm"))
	assert.Empty(t, testCatalog.Names("audio"))
	assert.Equal(t, int64(0b011), testCatalog.Defaults("video"))
	assert.Equal(t, int64(0), testCatalog.Defaults("image"))
	require.NoError(t, testCatalog.Validate())
}

func TestCatalogValidate(t *testing.T) {
	tests := []struct {
		name    string
		catalog Catalog
	}{
		{"not normalised", Catalog{"video/h264": {{Name: "a"}}}},
		{"empty name", Catalog{"video": {{Name: ""}}}},
		{"duplicate", Catalog{"video": {{Name: "a"}, {Name: "a"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.catalog.Validate())
		})
	}

	var many []FlagDef
	for i := 0; i <= MaxFlags; i++ {
		many = append(many, FlagDef{Name: fmt.Sprintf("f%d", i)})
	}
	assert.Error(t, Catalog{"video": many}.Validate())
}

func TestBitVector(t *testing.T) {
	bv := NewBitVector([]string{"autoplay", "loop", "mute"}, 0b101)

	v, ok := bv.Get("autoplay")
	assert.True(t, ok)
	assert.True(t, v)
	v, _ = bv.Get("loop")
	assert.False(t, v)
	_, ok = bv.Get("nope")
	assert.False(t, ok)

	require.NoError(t, bv.Set("loop", true))
	require.NoError(t, bv.Set("mute", false))
	assert.Equal(t, int64(0b011), bv.Value())
	assert.Error(t, bv.Set("nope", true))

	assert.Equal(t, map[string]bool{"autoplay": true, "loop": true, "mute": false}, bv.Map())
}

func TestBitVectorKeepsUnnamedBits(t *testing.T) {
	bv := NewBitVector([]string{"nsfw"}, 0b110)
	v, _ := bv.Get("nsfw")
	assert.False(t, v)
	assert.Equal(t, int64(0b110), bv.Value())
}
