package replication

type DescriptorOpt func(*Descriptor)

// WithSynced marks keys whose mutation triggers a replication message.
func WithSynced(keys ...string) DescriptorOpt {
	return func(d *Descriptor) {
		d.Synced = append(d.Synced, keys...)
	}
}

// WithDontSave marks keys excluded from the persisted tagged data.
func WithDontSave(keys ...string) DescriptorOpt {
	return func(d *Descriptor) {
		d.DontSave = append(d.DontSave, keys...)
	}
}

// WithOnLoad sets the hook run after a load populates the state.
func WithOnLoad(fn LifecycleHook) DescriptorOpt {
	return func(d *Descriptor) {
		d.OnLoad = fn
	}
}

// WithOnSave sets the hook run before the state is serialized.
func WithOnSave(fn LifecycleHook) DescriptorOpt {
	return func(d *Descriptor) {
		d.OnSave = fn
	}
}

// WithOnChange overrides the default broadcast-on-change behavior.
func WithOnChange(fn ChangeHook) DescriptorOpt {
	return func(d *Descriptor) {
		d.OnChange = fn
	}
}

// WithAttributes sets initial numeric attribute values for
// creature-flavored types.
func WithAttributes(attrs map[string]float64) DescriptorOpt {
	return func(d *Descriptor) {
		d.Attributes = attrs
	}
}
