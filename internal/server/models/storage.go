package models

import "time"

// Size is a byte count together with its human-readable rendering.
type Size struct {
	Bytes         int64  `json:"bytes"`
	HumanReadable string `json:"humanReadable"`
}

// StorageOverview summarises an owner's quota.
type StorageOverview struct {
	TotalStorage   Size `json:"totalStorage"`
	UsedSpace      Size `json:"usedSpace"`
	AvailableSpace Size `json:"availableSpace"`
}

// BlobUsage is the per-file entry of StorageDetails.
type BlobUsage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      FileType  `json:"type"`
	Size      Size      `json:"size"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"createdAt"`
}

// StorageDetails lists every binary file with its stored size.
type StorageDetails struct {
	Files          []BlobUsage `json:"files"`
	TotalUsedSpace Size        `json:"totalUsedSpace"`
}
