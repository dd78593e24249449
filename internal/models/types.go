package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type EntityType string

const (
	EntitySmartBin    EntityType = "smartbin"
	EntityCompartment EntityType = "compartment"
	EntitySingleBin   EntityType = "singlebin"
)

const (
	StatusActive      = "active"
	StatusInactive    = "inactive"
	StatusMaintenance = "maintenance"
)

// StringList is stored as a JSON array in a TEXT column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for StringList", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// OwnerScope narrows read paths to one owner. All is set for admins.
// This is data filtering, the caller decides who gets which scope.
type OwnerScope struct {
	Email string
	All   bool
}

func AllOwners() OwnerScope {
	return OwnerScope{All: true}
}

func Owner(email string) OwnerScope {
	return OwnerScope{Email: email}
}
