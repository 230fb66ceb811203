package graph

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"lukechampine.com/blake3"

	"github.com/roach88/specgraph/internal/value"
)

// DomainFingerprint separates graph fingerprints from other blake3 uses.
const DomainFingerprint = "specgraph/graph/v1"

// Envelope converts the graph to an ordered value bag in wire order.
func (g *Graph) Envelope() (value.Object, error) {
	raw, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal graph: %w", err)
	}
	obj, err := value.ParseObject(raw)
	if err != nil {
		return nil, fmt.Errorf("reparse graph: %w", err)
	}
	return obj, nil
}

// Fingerprint is a content hash of the graph, excluding generated_at.
// Two rebuilds of identical inputs have the same fingerprint.
//
// Format: hex(BLAKE3-256(domain + 0x00 + canonical JSON))
func (g *Graph) Fingerprint() (string, error) {
	env, err := g.Envelope()
	if err != nil {
		return "", err
	}
	env.Delete("generated_at")

	canonical, err := value.MarshalCanonical(env)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}

	h := blake3.New(32, nil)
	h.Write([]byte(DomainFingerprint))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}
