package vm

import "fmt"

// ClassID identifies a registered object class. 0 is the plain object class.
type ClassID uint32

const ClassNone ClassID = 0

// ClassFinalizer releases host data attached to an object of the class. It
// runs exactly once, when the object's reference count crosses zero.
type ClassFinalizer func(rt *Runtime, opaque any)

// ClassDef describes a host-registered object class.
type ClassDef struct {
	Name      string
	Finalizer ClassFinalizer
}

// NewClassID reserves the next class ID. IDs are runtime-scoped and never
// reused.
func (rt *Runtime) NewClassID() ClassID {
	rt.classes = append(rt.classes, ClassDef{})
	return ClassID(len(rt.classes))
}

// RegisterClass binds a definition to a previously reserved ID.
func (rt *Runtime) RegisterClass(id ClassID, def ClassDef) error {
	if id == ClassNone || int(id) > len(rt.classes) {
		return fmt.Errorf("vm: class id %d was never reserved", id)
	}
	if rt.classes[id-1].Name != "" {
		return fmt.Errorf("vm: class id %d already registered as %q", id, rt.classes[id-1].Name)
	}
	rt.classes[id-1] = def
	return nil
}

// classDef returns the definition for an ID, or nil for the plain class and
// reserved-but-unregistered IDs.
func (rt *Runtime) classDef(id ClassID) *ClassDef {
	if id == ClassNone || int(id) > len(rt.classes) {
		return nil
	}
	def := &rt.classes[id-1]
	if def.Name == "" && def.Finalizer == nil {
		return nil
	}
	return def
}

// ClassName returns the registered name for an ID, or "" when unknown.
func (rt *Runtime) ClassName(id ClassID) string {
	if def := rt.classDef(id); def != nil {
		return def.Name
	}
	return ""
}
