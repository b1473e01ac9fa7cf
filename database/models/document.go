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

package models

import (
	"errors"
	"time"
)

var ErrDocumentNotFound = errors.New("document not found")

// Document is the metadata row for an uploaded file (receipt, inspection
// photo, signed agreement). The file bytes live in the blob store under
// BlobKey; this row only describes them.
type Document struct {
	ID          uint   `gorm:"primarykey"`
	Ref         string `gorm:"uniqueIndex;size:36;not null"`
	VehicleID   uint   `gorm:"index;not null"`
	ProposalID  *uint  `gorm:"index"`
	Name        string `gorm:"size:256;not null"`
	ContentType string `gorm:"size:128"`
	Size        int64  `gorm:"not null"`
	BlobKey     string `gorm:"size:64;not null"`
	UploadedBy  uint   `gorm:"not null"`
	CreatedAt   time.Time
}

func (Document) TableName() string {
	return "document"
}
