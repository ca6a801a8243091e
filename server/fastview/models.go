// fastview builds simple push-updated views: a data model is converted to a
// view-model, which is multiplexed to one or more views, each of which emits
// element updates for the page to apply.
package fastview

import (
	"html/template"
)

// EleUpdate is an element identifier and a set of operations to apply to its attributes/content.
type EleUpdate struct {
	// The id by which to find the element
	EleId string
	// Op keys are attribute names or 'textContent', values are the strings to which these are set.
	// ('fill','gold') sets the fill attribute; ('textContent','42') sets the element's text.
	Ops []Op
}

// Op is a key and value. For example an html attribute and its new value.
type Op struct {
	Key   string
	Value string
}

// ViewComponent is a server side view: Parse adds its initial form to a page template
// and Updates yields the element updates that keep it current.
type ViewComponent interface {
	Updates() <-chan []EleUpdate
	// Parse adds the view's named template to the parent, whose func-map it may use,
	// and returns the template name.
	Parse(*template.Template) (string, error)
}
