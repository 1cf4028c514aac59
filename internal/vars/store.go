package vars

// Variable is a single shell-local assignment.
type Variable struct {
	Name  string
	Value string
}

// Store holds shell-local variables set with the local builtin. It is kept
// apart from the process environment; export never writes here.
type Store struct {
	values map[string]string
	order  []string
}

func NewStore() *Store {
	return &Store{
		values: make(map[string]string),
	}
}

// Set creates the variable on first assignment and updates it in place
// afterwards.
func (s *Store) Set(name, value string) {
	if _, ok := s.values[name]; !ok {
		s.order = append(s.order, name)
	}
	s.values[name] = value
}

// Lookup returns the value of name and whether it was set.
func (s *Store) Lookup(name string) (string, bool) {
	value, ok := s.values[name]
	return value, ok
}

// Get returns the value of name, or the empty string if it is unset.
func (s *Store) Get(name string) string {
	value, _ := s.Lookup(name)
	return value
}

// All returns every variable in first-assignment order.
func (s *Store) All() []Variable {
	out := make([]Variable, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, Variable{Name: name, Value: s.values[name]})
	}
	return out
}

func (s *Store) Len() int {
	return len(s.order)
}

// Clear drops every variable. It is called when the shell exits.
func (s *Store) Clear() {
	s.values = make(map[string]string)
	s.order = nil
}
