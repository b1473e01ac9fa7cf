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

var ErrVehicleNotFound = errors.New("vehicle not found")

// Vehicle represents a co-owned vehicle registered on the platform.
type Vehicle struct {
	ID        uint   `gorm:"primarykey"`
	Ref       string `gorm:"uniqueIndex;size:36;not null"`
	Make      string `gorm:"size:64"`
	Model     string `gorm:"size:64"`
	Plate     string `gorm:"uniqueIndex;size:16;not null"`
	Active    bool   `gorm:"default:true"`
	CreatedAt time.Time
}

func (Vehicle) TableName() string {
	return "vehicle"
}
