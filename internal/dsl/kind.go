package dsl

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned for a type name outside the supported set.
var ErrUnknownKind = errors.New("unknown value kind")

// Kind is the scalar type of a term value. The set is closed.
type Kind int

const (
	KindText Kind = iota
	KindBool
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindDate
	KindTime
	KindTimeTZ
	KindTimestamp
	KindTimestampTZ
)

var kindNames = [...]string{
	KindText:        "text",
	KindBool:        "bool",
	KindInt16:       "int2",
	KindInt32:       "int4",
	KindInt64:       "int8",
	KindFloat32:     "float4",
	KindFloat64:     "float8",
	KindDate:        "date",
	KindTime:        "time",
	KindTimeTZ:      "timetz",
	KindTimestamp:   "timestamp",
	KindTimestampTZ: "timestamptz",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Kinds returns every supported kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

var kindAliases = map[string]Kind{
	"text":                        KindText,
	"varchar":                     KindText,
	"string":                      KindText,
	"bool":                        KindBool,
	"boolean":                     KindBool,
	"int2":                        KindInt16,
	"smallint":                    KindInt16,
	"int4":                        KindInt32,
	"int":                         KindInt32,
	"integer":                     KindInt32,
	"int8":                        KindInt64,
	"bigint":                      KindInt64,
	"float4":                      KindFloat32,
	"real":                        KindFloat32,
	"float8":                      KindFloat64,
	"double precision":            KindFloat64,
	"date":                        KindDate,
	"time":                        KindTime,
	"time without time zone":      KindTime,
	"timetz":                      KindTimeTZ,
	"time with time zone":         KindTimeTZ,
	"timestamp":                   KindTimestamp,
	"timestamp without time zone": KindTimestamp,
	"timestamptz":                 KindTimestampTZ,
	"timestamp with time zone":    KindTimestampTZ,
}

// ParseKind resolves a type name. Common relational aliases are accepted,
// case-insensitively.
func ParseKind(name string) (Kind, error) {
	key := strings.Join(strings.Fields(strings.ToLower(name)), " ")
	if k, ok := kindAliases[key]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}
