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

package database

import (
	"fmt"

	"github.com/fleetshare-labs/covo/database/models"
	"gorm.io/gorm"
)

// GetDocument returns a document record by its public reference
func (d *Database) GetDocument(
	ref string,
	txn *gorm.DB,
) (*models.Document, error) {
	return d.metadata.GetDocument(ref, txn)
}

// GetDocumentsByVehicle returns the document records for a vehicle
func (d *Database) GetDocumentsByVehicle(
	vehicleID uint,
	txn *gorm.DB,
) ([]models.Document, error) {
	return d.metadata.GetDocumentsByVehicle(vehicleID, txn)
}

// AddDocument stores a document record along with its content. The content
// is written to the blob store first so a metadata failure never leaves a
// dangling record.
func (d *Database) AddDocument(
	document *models.Document,
	content []byte,
	txn *gorm.DB,
) error {
	blobKey := documentBlobKey(document.Ref)
	if err := d.blob.Put([]byte(blobKey), content); err != nil {
		return fmt.Errorf("store document content: %w", err)
	}
	document.BlobKey = blobKey
	document.Size = int64(len(content))
	if err := d.metadata.AddDocument(document, txn); err != nil {
		// Best effort cleanup of the orphaned blob
		if err2 := d.blob.Delete([]byte(blobKey)); err2 != nil {
			d.logger.Warn(
				"failed to remove orphaned document content",
				"component", "database",
				"key", blobKey,
				"error", err2,
			)
		}
		return err
	}
	return nil
}

// GetDocumentContent returns the stored content for a document record
func (d *Database) GetDocumentContent(
	document *models.Document,
) ([]byte, error) {
	return d.blob.Get([]byte(document.BlobKey))
}

func documentBlobKey(ref string) string {
	return "document_" + ref
}
