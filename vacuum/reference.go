package vacuum

import "strings"

// Namespace is the entity domain vacuums are registered under
const Namespace = "vacuum"

// Reference is a namespace qualified entity id, e.g. vacuum.kitchen
type Reference string

func NewReference(namespace string, id string) Reference {
	return Reference(namespace + "." + id)
}

func (r Reference) Namespace() string {
	namespace, _, _ := strings.Cut(string(r), ".")

	return namespace
}

// ObjectID returns the token after the namespace
func (r Reference) ObjectID() string {
	_, id, found := strings.Cut(string(r), ".")
	if !found {
		return string(r)
	}

	return id
}

func (r Reference) String() string {
	return string(r)
}
