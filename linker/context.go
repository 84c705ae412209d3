package linker

// Context is the process-wide registry of modules sharing one link: module
// name to Module, plus the shared global-variable store every module's
// resolved globals live in. Created once per embedding, torn down when the
// embedding ends.
type Context struct {
	modules     map[string]*Module
	order       []string // insertion order, drives Modules() and start-function invocation order
	globalStore *GlobalStore
}

// NewContext creates an empty Context with its own GlobalStore.
func NewContext() *Context {
	return &Context{modules: make(map[string]*Module), globalStore: NewGlobalStore()}
}

// AddModule registers mod under its own name. Re-registering an existing
// name overwrites the entry but keeps its original insertion position.
func (c *Context) AddModule(mod *Module) {
	if _, exists := c.modules[mod.Name()]; !exists {
		c.order = append(c.order, mod.Name())
	}
	c.modules[mod.Name()] = mod
}

// Module looks up a registered module by name.
func (c *Context) Module(name string) (*Module, bool) {
	m, ok := c.modules[name]
	return m, ok
}

// Modules returns every registered module in insertion order.
func (c *Context) Modules() []*Module {
	out := make([]*Module, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.modules[name])
	}
	return out
}

// Globals returns the Context-wide global-variable store.
func (c *Context) Globals() *GlobalStore {
	return c.globalStore
}
