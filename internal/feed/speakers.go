package feed

// speakerSource extracts the <person> elements of an event for one schema
// variant.
type speakerSource interface {
	variant() Variant
	persons(event *node) []*node
}

type nestedSpeakers struct{}

func (nestedSpeakers) variant() Variant { return VariantNested }

func (nestedSpeakers) persons(event *node) []*node {
	var out []*node
	for _, container := range event.childrenNamed("persons") {
		out = append(out, container.childrenNamed("person")...)
	}
	return out
}

type flatSpeakers struct{}

func (flatSpeakers) variant() Variant { return VariantFlat }

func (flatSpeakers) persons(event *node) []*node {
	return event.childrenNamed("person")
}

// speakerSourceFor sniffs which layout the event uses. It returns nil for
// an event without speakers.
func speakerSourceFor(event *node) speakerSource {
	switch {
	case event.hasChild("persons"):
		return nestedSpeakers{}
	case event.hasChild("person"):
		return flatSpeakers{}
	default:
		return nil
	}
}
