package typeddata

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Field describes one member of a custom EIP-712 struct type.
type Field struct {
	Name string
	Type string // Solidity type name, e.g. "address", "uint256", "Person", "Person[]"
}

// TypeSet maps a struct type name to its ordered field list. PrimaryType
// and every type it (transitively) references through struct-valued or
// struct-array-valued fields must be present.
type TypeSet map[string][]Field

// Domain is the EIP-712 domain separator input. Only non-nil fields
// participate in the type string and the encoding, in the canonical
// order name, version, chainId, verifyingContract, salt.
type Domain struct {
	Name              *string
	Version           *string
	ChainId           *big.Int
	VerifyingContract *common.Address
	Salt              *[32]byte
}

// Kind tags the variant of a Value.
type Kind int

const (
	KindUint Kind = iota
	KindInt
	KindBool
	KindAddr
	KindBytes
	KindBytesN
	KindStr
	KindArray
	KindStruct
)

// Value is the tagged union leaf/node type for EIP-712 message data:
// callers build values through these typed constructors rather than
// untyped maps.
type Value struct {
	kind    Kind
	uintVal *big.Int
	intVal  *big.Int
	boolVal bool
	addr    common.Address
	bytes   []byte
	n       int // width for BytesN
	str     string
	array   []Value
	strct   map[string]Value
}

func Uint(n *big.Int) Value         { return Value{kind: KindUint, uintVal: n} }
func Int(n *big.Int) Value          { return Value{kind: KindInt, intVal: n} }
func Bool(b bool) Value             { return Value{kind: KindBool, boolVal: b} }
func Addr(a common.Address) Value   { return Value{kind: KindAddr, addr: a} }
func Bytes(b []byte) Value          { return Value{kind: KindBytes, bytes: b} }
func BytesN(n int, b []byte) Value  { return Value{kind: KindBytesN, n: n, bytes: b} }
func Str(s string) Value            { return Value{kind: KindStr, str: s} }
func Array(vs ...Value) Value       { return Value{kind: KindArray, array: vs} }
func Struct(fields map[string]Value) Value {
	return Value{kind: KindStruct, strct: fields}
}

// baseTypeName strips a trailing "[]", so "Name[]" and "Name" both yield "Name".
func baseTypeName(t string) string {
	return strings.TrimSuffix(t, "[]")
}

func isArrayType(t string) bool { return strings.HasSuffix(t, "[]") }

func isCustomType(t string, types TypeSet) bool {
	_, ok := types[baseTypeName(t)]
	return ok
}

// dependencies marks in seen primaryType and every custom type name
// transitively referenced by its fields, discovered through
// struct-valued and struct-array-valued fields.
func dependencies(primaryType string, types TypeSet, seen map[string]bool) {
	if seen[primaryType] {
		return
	}
	fields, ok := types[primaryType]
	if !ok {
		return
	}
	seen[primaryType] = true
	for _, f := range fields {
		base := baseTypeName(f.Type)
		if isCustomType(f.Type, types) {
			dependencies(base, types, seen)
		}
	}
}

// EncodeType renders "Primary(type1 name1,...)" followed by every
// referenced custom type (primary excluded), sorted alphabetically.
func EncodeType(primaryType string, types TypeSet) (string, error) {
	fields, ok := types[primaryType]
	if !ok {
		return "", fmt.Errorf("typeddata: unknown primary type %q", primaryType)
	}

	seen := map[string]bool{}
	dependencies(primaryType, types, seen)
	delete(seen, primaryType)

	others := make([]string, 0, len(seen))
	for name := range seen {
		others = append(others, name)
	}
	sort.Strings(others)

	var sb strings.Builder
	writeOne := func(name string) error {
		fs, ok := types[name]
		if !ok {
			return fmt.Errorf("typeddata: unknown referenced type %q", name)
		}
		sb.WriteString(name)
		sb.WriteByte('(')
		for i, f := range fs {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(f.Type)
			sb.WriteByte(' ')
			sb.WriteString(f.Name)
		}
		sb.WriteByte(')')
		return nil
	}

	if err := writeOne(primaryType); err != nil {
		return "", err
	}
	_ = fields
	for _, name := range others {
		if err := writeOne(name); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// TypeHash is keccak256(EncodeType(primaryType, types)).
func TypeHash(primaryType string, types TypeSet) ([]byte, error) {
	encoded, err := EncodeType(primaryType, types)
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256([]byte(encoded)), nil
}

func encodeValue(v Value, fieldType string, types TypeSet) ([]byte, error) {
	switch {
	case isArrayType(fieldType):
		if v.kind != KindArray {
			return nil, fmt.Errorf("typeddata: expected array for field type %s", fieldType)
		}
		elemType := baseTypeName(fieldType)
		var concatenated []byte
		for _, elem := range v.array {
			enc, err := encodeValue(elem, elemType, types)
			if err != nil {
				return nil, err
			}
			// Array elements are individually hashed to 32 bytes unless
			// already 32 bytes static (structs hash_struct already does
			// this); concatenate then hash per EIP-712 array rule.
			concatenated = append(concatenated, enc...)
		}
		return crypto.Keccak256(concatenated), nil

	case isCustomType(fieldType, types):
		if v.kind != KindStruct {
			return nil, fmt.Errorf("typeddata: expected struct for field type %s", fieldType)
		}
		return HashStruct(fieldType, types, v.strct)
	}

	switch v.kind {
	case KindStr:
		return crypto.Keccak256([]byte(v.str)), nil
	case KindBytes:
		return crypto.Keccak256(v.bytes), nil
	case KindBytesN:
		out := make([]byte, 32)
		copy(out, v.bytes)
		return out, nil
	case KindBool:
		out := make([]byte, 32)
		if v.boolVal {
			out[31] = 1
		}
		return out, nil
	case KindAddr:
		out := make([]byte, 32)
		copy(out[12:], v.addr.Bytes())
		return out, nil
	case KindUint:
		n := v.uintVal
		if n == nil {
			n = big.NewInt(0)
		}
		out := make([]byte, 32)
		n.FillBytes(out)
		return out, nil
	case KindInt:
		n := v.intVal
		if n == nil {
			n = big.NewInt(0)
		}
		u := new(big.Int).Set(n)
		if u.Sign() < 0 {
			mod := new(big.Int).Lsh(big.NewInt(1), 256)
			u.Add(u, mod)
		}
		out := make([]byte, 32)
		u.FillBytes(out)
		return out, nil
	default:
		return nil, fmt.Errorf("typeddata: cannot encode value of kind %v for type %s", v.kind, fieldType)
	}
}

// HashStruct computes keccak256(typeHash || encode(data)) for primaryType.
func HashStruct(primaryType string, types TypeSet, data map[string]Value) ([]byte, error) {
	typeHash, err := TypeHash(primaryType, types)
	if err != nil {
		return nil, err
	}
	fields, ok := types[primaryType]
	if !ok {
		return nil, fmt.Errorf("typeddata: unknown primary type %q", primaryType)
	}

	encoded := make([]byte, 0, 32*(len(fields)+1))
	encoded = append(encoded, typeHash...)
	for _, f := range fields {
		v, ok := data[f.Name]
		if !ok {
			return nil, fmt.Errorf("typeddata: missing value for field %q", f.Name)
		}
		enc, err := encodeValue(v, f.Type, types)
		if err != nil {
			return nil, fmt.Errorf("typeddata: field %q: %w", f.Name, err)
		}
		encoded = append(encoded, enc...)
	}
	return crypto.Keccak256(encoded), nil
}

// domainTypeSet builds the type definition for only the domain fields
// that are actually present, in canonical order.
func domainTypeSet(d Domain) (TypeSet, map[string]Value) {
	var fields []Field
	values := map[string]Value{}

	if d.Name != nil {
		fields = append(fields, Field{"name", "string"})
		values["name"] = Str(*d.Name)
	}
	if d.Version != nil {
		fields = append(fields, Field{"version", "string"})
		values["version"] = Str(*d.Version)
	}
	if d.ChainId != nil {
		fields = append(fields, Field{"chainId", "uint256"})
		values["chainId"] = Uint(d.ChainId)
	}
	if d.VerifyingContract != nil {
		fields = append(fields, Field{"verifyingContract", "address"})
		values["verifyingContract"] = Addr(*d.VerifyingContract)
	}
	if d.Salt != nil {
		fields = append(fields, Field{"salt", "bytes32"})
		values["salt"] = BytesN(32, d.Salt[:])
	}

	return TypeSet{"EIP712Domain": fields}, values
}

// DomainSeparator computes keccak256(typeHashOfPresentFields || encodedPresentFields).
func DomainSeparator(d Domain) ([]byte, error) {
	types, values := domainTypeSet(d)
	return HashStruct("EIP712Domain", types, values)
}

// Hash computes the final EIP-712 digest:
// keccak256(0x19 0x01 || domainSeparator || hashStruct(primaryType, message)).
func Hash(domain Domain, types TypeSet, primaryType string, message map[string]Value) (common.Hash, error) {
	domainSep, err := DomainSeparator(domain)
	if err != nil {
		return common.Hash{}, err
	}
	structHash, err := HashStruct(primaryType, types, message)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash([]byte{0x19, 0x01}, domainSep, structHash), nil
}
