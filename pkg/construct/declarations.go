package construct

// Declarations registers resources before they are assembled into a graph. It enforces name uniqueness per
// kind and preserves declaration order; it does no dependency checking (see the engine's Assemble).
type Declarations struct {
	order []ResourceId
	byId  map[ResourceId]*Resource
}

func NewDeclarations() *Declarations {
	return &Declarations{byId: make(map[ResourceId]*Resource)}
}

// Create declares a new resource. It fails with [DuplicateNameError] if `name` is already declared for `kind`.
func (d *Declarations) Create(kind Kind, name string, props Properties, dependsOn ...ResourceId) (*Resource, error) {
	r := NewResource(kind, name, props, dependsOn...)
	if err := r.ID.Validate(); err != nil {
		return nil, err
	}
	if err := d.Add(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Add registers an already-built resource.
func (d *Declarations) Add(r *Resource) error {
	if d.byId == nil {
		d.byId = make(map[ResourceId]*Resource)
	}
	if _, ok := d.byId[r.ID]; ok {
		return &DuplicateNameError{ID: r.ID}
	}
	d.byId[r.ID] = r
	d.order = append(d.order, r.ID)
	return nil
}

// Merge adds every resource of `other`, in its declaration order, stopping at the first duplicate.
func (d *Declarations) Merge(other *Declarations) error {
	for _, r := range other.Resources() {
		if err := d.Add(r); err != nil {
			return err
		}
	}
	return nil
}

func (d *Declarations) Get(id ResourceId) (*Resource, bool) {
	r, ok := d.byId[id]
	return r, ok
}

// Resources returns the declared resources in declaration order.
func (d *Declarations) Resources() []*Resource {
	rs := make([]*Resource, len(d.order))
	for i, id := range d.order {
		rs[i] = d.byId[id]
	}
	return rs
}

// Ids returns the declared resource ids in declaration order.
func (d *Declarations) Ids() []ResourceId {
	return append([]ResourceId(nil), d.order...)
}

func (d *Declarations) Len() int {
	return len(d.order)
}
