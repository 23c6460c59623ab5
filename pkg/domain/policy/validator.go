package policy

// Validate checks every declared key of doc against the schema table and
// returns a *TypeMismatchError for the first mismatch in key order.
// Undeclared keys are accepted unchanged.
func Validate(doc Document) error {
	for _, key := range doc.Keys() {
		expected, ok := ExpectedKind(key)
		if !ok {
			continue
		}
		if actual := doc[key].Kind(); actual != expected {
			return &TypeMismatchError{Key: key, Expected: expected, Actual: actual}
		}
	}
	return nil
}

// Advisories returns non-fatal warnings about settings that are valid but
// probably unwanted.
func Advisories(doc Document) []string {
	var out []string
	if v, ok := doc["ComponentUpdatesEnabled"].AsBool(); ok && !v {
		out = append(out, "ComponentUpdatesEnabled=false may prevent security updates")
	}
	if v, ok := doc["SafeBrowsingProtectionLevel"].AsInt(); ok && v == 0 {
		out = append(out, "SafeBrowsingProtectionLevel=0 turns off phishing and malware protection")
	}
	return out
}

// UndeclaredKeys lists keys the schema table does not know, in sorted order.
func UndeclaredKeys(doc Document) []string {
	var out []string
	for _, key := range doc.Keys() {
		if _, ok := ExpectedKind(key); !ok {
			out = append(out, key)
		}
	}
	return out
}
