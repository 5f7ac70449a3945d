package fieldpath

import "sort"

// resolutionContext is where the next field name is looked up. It is either a
// singleBundle or a multiBundle; the set is closed by the unexported method.
type resolutionContext interface {
	entity() string
	bundleSet() []string
	isResolutionContext()
}

// singleBundle looks fields up on one bundle. bundle is empty for config
// entities and for the starting bundle of a config entity type.
type singleBundle struct {
	entityType string
	bundle     string
}

func (c singleBundle) entity() string      { return c.entityType }
func (c singleBundle) bundleSet() []string { return []string{c.bundle} }
func (singleBundle) isResolutionContext()  {}

// multiBundle follows a reference with several target bundles. A field must
// match uniformly in all of them.
type multiBundle struct {
	entityType string
	bundles    []string
}

func (c multiBundle) entity() string      { return c.entityType }
func (c multiBundle) bundleSet() []string { return append([]string(nil), c.bundles...) }
func (multiBundle) isResolutionContext()  {}

// targetContext returns the context entered by traversing a reference.
func targetContext(targetType string, targetBundles []string) resolutionContext {
	switch len(targetBundles) {
	case 0:
		return singleBundle{entityType: targetType}
	case 1:
		return singleBundle{entityType: targetType, bundle: targetBundles[0]}
	default:
		bundles := append([]string(nil), targetBundles...)
		sort.Strings(bundles)
		return multiBundle{entityType: targetType, bundles: bundles}
	}
}
