// Package model contains the records shared by the review engine: catalog
// topics, verification outcomes, pending changes, the persisted queue state,
// the weekly schedule and run history entries.
//
// All types are plain serialisable structs; persistence lives in service/dao
// and behaviour in the service packages.
package model
