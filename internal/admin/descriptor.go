package admin

// Descriptor is the per-model admin configuration: which fields appear in
// the list view, the add/edit form and the search bar, default ordering,
// page size, capability flags, and nested inline relations.
//
// Name doubles as the route id base: the registry derives the route id from
// it, appending a numeric suffix on collision.
type Descriptor struct {
	// Name is the admin configuration's own name, e.g. "UserAdmin".
	Name string
	// Model is the underlying model identifier (the table name).
	Model string
	// VerboseName is the human-readable model title.
	VerboseName string

	TableFields  []Field
	FormFields   []Field
	SearchFields []Field

	// DefaultOrdering applies when no sort parameter is supplied; entries
	// may carry the descending "-" marker.
	DefaultOrdering []string
	// PerPage bounds unpaginated search results; zero means DefaultPerPage.
	PerPage int

	EnableEdit   bool
	EnableAdd    bool
	EnableDelete bool

	Inlines []*InlineDescriptor

	routeID string
}

// DefaultPerPage is the fallback page size for descriptors.
const DefaultPerPage = 10

// InlineDescriptor configures a child model listing scoped to a parent
// record through a foreign-key column, with its own field list.
type InlineDescriptor struct {
	// Model is the child model identifier (the table name).
	Model string
	// VerboseName is the child listing's title.
	VerboseName string
	// ForeignKey is the child column referencing the parent id.
	ForeignKey string

	TableFields []Field
}

// RouteID returns the stable identifier assigned at registration.
func (d *Descriptor) RouteID() string {
	return d.routeID
}

// PageSize returns the effective page size.
func (d *Descriptor) PageSize() int {
	if d.PerPage > 0 {
		return d.PerPage
	}
	return DefaultPerPage
}

// SearchFieldNames returns the set of filterable field names.
func (d *Descriptor) SearchFieldNames() []string {
	names := make([]string, 0, len(d.SearchFields))
	for _, f := range d.SearchFields {
		names = append(names, f.Name)
	}
	return names
}

// IsSearchField reports whether name is a declared search field. Filter
// keys outside this set are ignored, never forwarded to the repository.
func (d *Descriptor) IsSearchField(name string) bool {
	for _, f := range d.SearchFields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// FindInline locates a declared inline by its child model name.
func (d *Descriptor) FindInline(model string) (*InlineDescriptor, bool) {
	for _, inline := range d.Inlines {
		if inline.Model == model {
			return inline, true
		}
	}
	return nil, false
}

// SortableField reports whether the inline declares name as a sortable
// table field.
func (in *InlineDescriptor) SortableField(name string) bool {
	for _, f := range in.TableFields {
		if f.Name == name && f.Sortable {
			return true
		}
	}
	return false
}

// FieldConfigs returns the inline's field metadata for the response.
func (in *InlineDescriptor) FieldConfigs() []FieldConfig {
	configs := make([]FieldConfig, 0, len(in.TableFields))
	for _, f := range in.TableFields {
		configs = append(configs, f.Config())
	}
	return configs
}

// FrontendConfig is the configuration blob the list shell consumes.
func (d *Descriptor) FrontendConfig() map[string]any {
	tableFields := make([]FieldConfig, 0, len(d.TableFields))
	for _, f := range d.TableFields {
		tableFields = append(tableFields, f.Config())
	}
	searchFields := make([]FieldConfig, 0, len(d.SearchFields))
	for _, f := range d.SearchFields {
		searchFields = append(searchFields, f.Config())
	}
	formFields := make([]FieldConfig, 0, len(d.FormFields))
	for _, f := range d.FormFields {
		formFields = append(formFields, f.Config())
	}
	inlines := make([]map[string]any, 0, len(d.Inlines))
	for _, in := range d.Inlines {
		inlines = append(inlines, map[string]any{
			"model":        in.Model,
			"verbose_name": in.VerboseName,
			"fields":       in.FieldConfigs(),
		})
	}
	return map[string]any{
		"route_id":         d.routeID,
		"verbose_name":     d.VerboseName,
		"table_fields":     tableFields,
		"search_fields":    searchFields,
		"form_fields":      formFields,
		"default_ordering": d.DefaultOrdering,
		"per_page":         d.PageSize(),
		"enable_edit":      d.EnableEdit,
		"enable_add":       d.EnableAdd,
		"enable_delete":    d.EnableDelete,
		"inlines":          inlines,
	}
}
