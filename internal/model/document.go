package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// VersionField is the internal document version key. It is never sent to
// clients and is hidden from default projections.
const VersionField = "__v"

// Document is implemented by every persisted entity so the generic
// repository can assign and read identifiers.
type Document interface {
	GetID() primitive.ObjectID
	SetID(id primitive.ObjectID)
}
