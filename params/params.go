// Package params encodes the dispatch table of spec.md §4.10: for
// each public-key algorithm, the ordered sequence of parameter
// "shapes" that make up its public-key portion, private-key portion,
// and encrypted-session-key portion. This is a static data structure,
// not a parser — it describes slot shapes for a collaborator's wire
// codec to consume, it does not itself read or write bytes.
package params

import "github.com/skeeto/pgpkey/enums"

// ShapeKind names the kind of value one parameter slot carries.
type ShapeKind int

const (
	ShapeMPI        ShapeKind = iota // a multi-precision integer
	ShapeOID                         // a curve OID byte string
	ShapeKDFParams                   // ECDH {hash id, cipher id} KDF block
	ShapeECDHSymKey                  // ECDH-wrapped session key material
)

// Shape is one slot in a parameter vector.
type Shape struct {
	Kind  ShapeKind
	Label string // e.g. "n", "e", "d", "p", "q", "Q", "V", "C"
}

func mpi(label string) Shape { return Shape{Kind: ShapeMPI, Label: label} }

// Table describes the three parameter-shape vectors for one algorithm.
type Table struct {
	Public     []Shape
	Private    []Shape
	SessionKey []Shape
}

var tables = map[enums.PubKeyAlgo]Table{
	enums.RSAEncryptSign: {
		Public:     []Shape{mpi("n"), mpi("e")},
		Private:    []Shape{mpi("d"), mpi("p"), mpi("q"), mpi("u")},
		SessionKey: []Shape{mpi("c")},
	},
	enums.RSAEncryptOnly: {
		Public:     []Shape{mpi("n"), mpi("e")},
		Private:    []Shape{mpi("d"), mpi("p"), mpi("q"), mpi("u")},
		SessionKey: []Shape{mpi("c")},
	},
	enums.RSASignOnly: {
		Public:  []Shape{mpi("n"), mpi("e")},
		Private: []Shape{mpi("d"), mpi("p"), mpi("q"), mpi("u")},
	},
	enums.Elgamal: {
		Public:     []Shape{mpi("p"), mpi("g"), mpi("y")},
		Private:    []Shape{mpi("x")},
		SessionKey: []Shape{mpi("c1"), mpi("c2")},
	},
	enums.DSA: {
		Public:  []Shape{mpi("p"), mpi("q"), mpi("g"), mpi("y")},
		Private: []Shape{mpi("x")},
	},
	enums.ECDSA: {
		Public:  []Shape{{Kind: ShapeOID, Label: "oid"}, mpi("Q")},
		Private: []Shape{mpi("d")},
	},
	enums.EdDSA: {
		Public:  []Shape{{Kind: ShapeOID, Label: "oid"}, mpi("Q")},
		Private: []Shape{mpi("d")},
	},
	enums.ECDH: {
		Public: []Shape{
			{Kind: ShapeOID, Label: "oid"},
			mpi("Q"),
			{Kind: ShapeKDFParams, Label: "kdf_params"},
		},
		Private: []Shape{mpi("d")},
		SessionKey: []Shape{
			mpi("V"),
			{Kind: ShapeECDHSymKey, Label: "C"},
		},
	},
}

// ErrUnknownAlgorithm is returned when an algorithm has no registered
// parameter shapes.
type ErrUnknownAlgorithm struct{ Algo enums.PubKeyAlgo }

func (e ErrUnknownAlgorithm) Error() string {
	return "unknown algorithm: " + e.Algo.String()
}

// For returns the parameter-shape table for algo.
func For(algo enums.PubKeyAlgo) (Table, error) {
	t, ok := tables[algo]
	if !ok {
		return Table{}, ErrUnknownAlgorithm{Algo: algo}
	}
	return t, nil
}

// PublicShapes returns the public-key parameter shapes for algo.
func PublicShapes(algo enums.PubKeyAlgo) ([]Shape, error) {
	t, err := For(algo)
	if err != nil {
		return nil, err
	}
	return t.Public, nil
}

// PrivateShapes returns the private-key parameter shapes for algo.
func PrivateShapes(algo enums.PubKeyAlgo) ([]Shape, error) {
	t, err := For(algo)
	if err != nil {
		return nil, err
	}
	return t.Private, nil
}

// SessionKeyShapes returns the encrypted-session-key parameter shapes
// for algo. Signature-only algorithms (RSA sign-only, DSA, ECDSA,
// EdDSA) return nil, nil.
func SessionKeyShapes(algo enums.PubKeyAlgo) ([]Shape, error) {
	t, err := For(algo)
	if err != nil {
		return nil, err
	}
	return t.SessionKey, nil
}
