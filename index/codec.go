// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package index

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/veridoc/core"
)

// Embedded vectors use fixed-width float encoding; everything else is
// varint or length-prefixed.
var (
	denseVectorMUS  = ord.NewSliceSer[float32](raw.Float32)
	sparseVectorMUS = ord.NewMapSer[uint32, float32](varint.Uint32, raw.Float32)
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := varint.Uint64.Unmarshal(data)
	return core.ID(id), err
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, chunkMUS.Size(*chunk))
	chunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := chunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalManifest serializes a DocumentManifest to bytes.
func MarshalManifest(manifest *core.DocumentManifest) []byte {
	buf := make([]byte, manifestMUS.Size(*manifest))
	manifestMUS.Marshal(*manifest, buf)
	return buf
}

// UnmarshalManifest deserializes a DocumentManifest from bytes.
func UnmarshalManifest(data []byte) (*core.DocumentManifest, error) {
	manifest, _, err := manifestMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &manifest, nil
}

// chunkMUS is the handwritten MUS serializer for core.Chunk. Field order
// is part of the storage format; append new fields at the end.
var chunkMUS = chunkSer{}

type chunkSer struct{}

func (chunkSer) Marshal(v core.Chunk, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Id), bs)
	n += ord.String.Marshal(v.Text, bs[n:])
	n += ord.String.Marshal(v.Filename, bs[n:])
	n += ord.String.Marshal(v.DocType, bs[n:])
	n += varint.Int.Marshal(v.PageNumber, bs[n:])
	n += varint.Int.Marshal(v.ChunkIndex, bs[n:])
	n += varint.Int.Marshal(v.TotalChunks, bs[n:])
	n += denseVectorMUS.Marshal(v.Dense, bs[n:])
	n += sparseVectorMUS.Marshal(v.Sparse, bs[n:])
	return
}

func (chunkSer) Unmarshal(bs []byte) (v core.Chunk, n int, err error) {
	var (
		n1 int
		id uint64
	)
	id, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Id = core.ID(id)
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Filename, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.DocType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.PageNumber, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ChunkIndex, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.TotalChunks, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Dense, n1, err = denseVectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Sparse, n1, err = sparseVectorMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (chunkSer) Size(v core.Chunk) (size int) {
	size = varint.Uint64.Size(uint64(v.Id))
	size += ord.String.Size(v.Text)
	size += ord.String.Size(v.Filename)
	size += ord.String.Size(v.DocType)
	size += varint.Int.Size(v.PageNumber)
	size += varint.Int.Size(v.ChunkIndex)
	size += varint.Int.Size(v.TotalChunks)
	size += denseVectorMUS.Size(v.Dense)
	size += sparseVectorMUS.Size(v.Sparse)
	return
}

// manifestMUS is the handwritten MUS serializer for core.DocumentManifest.
// Timestamps are stored as Unix microseconds.
var manifestMUS = manifestSer{}

type manifestSer struct{}

func (manifestSer) Marshal(v core.DocumentManifest, bs []byte) (n int) {
	n = ord.String.Marshal(v.Filename, bs)
	n += ord.String.Marshal(v.DocType, bs[n:])
	n += varint.Int.Marshal(v.ChunkCount, bs[n:])
	n += varint.Int64.Marshal(v.IndexedAt.UnixMicro(), bs[n:])
	return
}

func (manifestSer) Unmarshal(bs []byte) (v core.DocumentManifest, n int, err error) {
	var (
		n1 int
		ts int64
	)
	v.Filename, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.DocType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ChunkCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	ts, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.IndexedAt = time.UnixMicro(ts).UTC()
	return
}

func (manifestSer) Size(v core.DocumentManifest) (size int) {
	size = ord.String.Size(v.Filename)
	size += ord.String.Size(v.DocType)
	size += varint.Int.Size(v.ChunkCount)
	size += varint.Int64.Size(v.IndexedAt.UnixMicro())
	return
}
