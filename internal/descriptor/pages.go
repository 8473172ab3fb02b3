package descriptor

// Registry stores console page configurations in registration order.
type Registry struct {
	pages map[string]*PageConfig
	order []string
}

// NewRegistry creates an empty page registry.
func NewRegistry() *Registry {
	return &Registry{pages: make(map[string]*PageConfig)}
}

// Register adds a page configuration keyed by its entity name.
func (r *Registry) Register(cfg *PageConfig) {
	if _, exists := r.pages[cfg.Entity]; !exists {
		r.order = append(r.order, cfg.Entity)
	}
	r.pages[cfg.Entity] = cfg
}

// Get returns the page configuration for an entity.
func (r *Registry) Get(entity string) (*PageConfig, bool) {
	cfg, ok := r.pages[entity]
	return cfg, ok
}

// List returns all page configurations in registration order.
func (r *Registry) List() []*PageConfig {
	out := make([]*PageConfig, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.pages[name])
	}
	return out
}

// DefaultRegistry builds the built-in console pages of the workflow
// platform. Pages are plain declarative values; everything dynamic about
// them is derived by the engine at runtime.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(&PageConfig{
		Entity:       "customer",
		Service:      "customer-service",
		Fields:       []string{"firstName", "lastName", "email", "phoneNumber", "nationalId", "createTimestamp", "deleted"},
		EnableCreate: true,
		EnableEdit:   true,
		EnableDelete: true,
		UpdateableFields: []string{"firstName", "lastName", "email", "phoneNumber"},
		CustomFilters: []CustomFilter{
			{Key: "active", Label: "Active only", FilterValue: "deleted==false", Type: FilterStatic},
		},
	})

	r.Register(&PageConfig{
		Entity:       "application",
		Service:      "application-service",
		Fields:       []string{"customerId", "workflowId", "status", "type", "amount", "startDate", "payloadJson", "createTimestamp", "deleted"},
		EnableCreate: true,
		EnableEdit:   true,
		EnableDelete: true,
		PredefinedFields: map[string]PredefinedField{
			"status": {Selection: SelectionSingle, APIEndpoint: "applicationStatuses", Service: "application-service"},
			"type":   {Selection: SelectionSingle, Options: []string{"PURCHASE", "REFINANCE", "CONSTRUCTION"}},
		},
		CreateDefaults: map[string]any{
			"status": "DRAFT",
		},
		RelationshipFields: map[string]string{
			"customer": "customerId",
			"workflow": "workflowId",
		},
		RelationshipOptions: map[string]RelationshipOption{
			"customer": {Service: "customer-service", Entity: "customer", LabelField: "email"},
			"workflow": {Service: "workflow-service", Entity: "workflow", LabelField: "name", IsLookupEndpoint: true},
		},
		CustomFilters: []CustomFilter{
			{Key: "active", Label: "Active only", FilterValue: "deleted==false", Type: FilterStatic},
			{
				Key: "byWorkflow", Label: "By workflow", FilterValue: "workflowId=={value}",
				Type: FilterDynamic, APIEndpoint: "workflow", Service: "workflow-service",
				LabelField: "name", ValueField: "id",
			},
		},
	})

	r.Register(&PageConfig{
		Entity:       "workerTask",
		Service:      "worker-service",
		Fields:       []string{"name", "workflowId", "status", "retryCount", "lastRunDate", "configJson", "deleted"},
		EnableCreate: true,
		EnableEdit:   true,
		EnableDelete: true,
		PredefinedFields: map[string]PredefinedField{
			"status": {Selection: SelectionSingle, Options: []string{"PENDING", "RUNNING", "DONE", "FAILED"}},
		},
		RelationshipFields: map[string]string{
			"workflow": "workflowId",
		},
		RelationshipOptions: map[string]RelationshipOption{
			"workflow": {Service: "workflow-service", Entity: "workflow", LabelField: "name", IsLookupEndpoint: true},
		},
		CustomFilters: []CustomFilter{
			{Key: "failed", Label: "Failed only", FilterValue: "status==FAILED", Type: FilterStatic},
		},
	})

	r.Register(&PageConfig{
		Entity:       "propertyBlock",
		Service:      "property-service",
		Fields:       []string{"propertyId", "reasons", "blockDate", "notes", "deleted"},
		EnableCreate: true,
		EnableEdit:   true,
		EnableDelete: true,
		PredefinedFields: map[string]PredefinedField{
			"reasons": {Selection: SelectionMulti, Options: []string{"FRAUD", "LEGAL", "DUPLICATE", "MANUAL_REVIEW"}},
		},
	})

	r.Register(&PageConfig{
		Entity:       "customerBlock",
		Service:      "customer-service",
		Fields:       []string{"customerId", "reasons", "blockDate", "notes", "deleted"},
		EnableCreate: true,
		EnableEdit:   true,
		EnableDelete: true,
		PredefinedFields: map[string]PredefinedField{
			"reasons": {Selection: SelectionMulti, Options: []string{"FRAUD", "LEGAL", "DUPLICATE", "MANUAL_REVIEW"}},
		},
		RelationshipFields: map[string]string{
			"customer": "customerId",
		},
		RelationshipOptions: map[string]RelationshipOption{
			"customer": {Service: "customer-service", Entity: "customer", LabelField: "email"},
		},
	})

	r.Register(&PageConfig{
		Entity:            "validation",
		Service:           "validation-service",
		Fields:            []string{"name", "entity", "severity", "rulesJson", "deleted"},
		EnableCreate:      true,
		EnableEdit:        true,
		EnableDelete:      true,
		EditAllAttributes: true,
		PredefinedFields: map[string]PredefinedField{
			"severity": {Selection: SelectionSingle, Options: []string{"INFO", "WARNING", "BLOCKING"}},
		},
		BlobSchemas: map[string]string{
			"rulesJson": `{
				"type": "object",
				"properties": {
					"rules": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["field", "check"],
							"properties": {
								"field": {"type": "string"},
								"check": {"type": "string"},
								"message": {"type": "string"}
							}
						}
					}
				},
				"required": ["rules"]
			}`,
		},
	})

	return r
}
