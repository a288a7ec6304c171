package model

import "time"

// Entry is one member of a partition: the record key and its serialized value.
type Entry struct {
	Partition string    `gorm:"primaryKey;column:partition_key;type:VARCHAR(255);"`
	Key       string    `gorm:"primaryKey;column:record_key;type:VARCHAR(512);"`
	Value     string    `gorm:"column:value;type:TEXT;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Entry) TableName() string {
	return "hash_entries"
}

type EntryList []Entry

// EntityName maps a name to the entity owning it inside a partition.
// The unique index on (partition, kind, name) is what keeps names unique.
type EntityName struct {
	Partition string `gorm:"primaryKey;column:partition_key;type:VARCHAR(255);uniqueIndex:entity_names_partition_kind_name,priority:1"`
	Kind      string `gorm:"primaryKey;column:kind;type:VARCHAR(32);uniqueIndex:entity_names_partition_kind_name,priority:2"`
	EntityID  string `gorm:"primaryKey;column:entity_id;type:VARCHAR(255);"`
	Name      string `gorm:"column:name;type:VARCHAR(255);not null;uniqueIndex:entity_names_partition_kind_name,priority:3"`
}

func (EntityName) TableName() string {
	return "entity_names"
}
