package domain

type TodoID string

type Todo struct {
	ID        TodoID `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	User      UserID `json:"user"`
}

// TodoPatch carries the fields of a sparse update. Nil means untouched.
type TodoPatch struct {
	Name      *string
	Completed *bool
}

func (p TodoPatch) Empty() bool {
	return p.Name == nil && p.Completed == nil
}
