// Copyright 2025 Fleetshare Labs
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

package blob

import (
	"errors"
	"log/slog"

	"github.com/fleetshare-labs/covo/database/plugin/blob/badger"
)

// ErrUnknownPlugin is returned when an unrecognized blob plugin name is requested
var ErrUnknownPlugin = errors.New("unknown blob store plugin")

// ErrKeyNotFound is returned by blob operations when a key is missing
var ErrKeyNotFound = badger.ErrKeyNotFound

// BlobStore is the interface for document content storage. Keys are opaque;
// callers derive them from document metadata rows.
type BlobStore interface {
	Close() error
	Get(key []byte) ([]byte, error)
	Put(key []byte, val []byte) error
	Delete(key []byte) error
}

// New creates a new blob store. Badger is currently the only blob store
// plugin.
func New(
	pluginName string,
	dataDir string,
	logger *slog.Logger,
) (BlobStore, error) {
	switch pluginName {
	case "badger":
		return badger.New(
			badger.WithDataDir(dataDir),
			badger.WithLogger(logger),
		)
	default:
		return nil, ErrUnknownPlugin
	}
}
