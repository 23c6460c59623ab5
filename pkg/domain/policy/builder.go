package policy

// Build assembles the document for a selection: the base policies followed by
// every enabled category in declaration order. Build never fails and has no
// side effects.
func Build(sel Selection) Document {
	doc := BasePolicies()
	for i, c := range categories {
		if sel.mask&(1<<i) == 0 {
			continue
		}
		doc.Merge(c.Policies)
	}
	return doc
}
