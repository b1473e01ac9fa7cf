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

package sqlite

import (
	"errors"

	"github.com/fleetshare-labs/covo/database/models"
	"gorm.io/gorm"
)

// GetDocument retrieves document metadata by external reference.
// Returns nil if not found.
func (d *MetadataStoreSqlite) GetDocument(
	ref string,
	txn *gorm.DB,
) (*models.Document, error) {
	var doc models.Document
	if result := d.resolve(txn).Where(
		"ref = ?",
		ref,
	).First(&doc); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &doc, nil
}

// GetDocumentsByVehicle retrieves document metadata for a vehicle.
func (d *MetadataStoreSqlite) GetDocumentsByVehicle(
	vehicleID uint,
	txn *gorm.DB,
) ([]models.Document, error) {
	var docs []models.Document
	if result := d.resolve(txn).Where(
		"vehicle_id = ?",
		vehicleID,
	).Order("id").Find(&docs); result.Error != nil {
		return nil, result.Error
	}
	return docs, nil
}

// AddDocument creates a document metadata record.
func (d *MetadataStoreSqlite) AddDocument(
	doc *models.Document,
	txn *gorm.DB,
) error {
	if result := d.resolve(txn).Create(doc); result.Error != nil {
		return result.Error
	}
	return nil
}
