package lighthouse

const (
	flagValueSeparatorConstant = "="
)

// Flag is a single command-line option: either a bare flag or a flag=value pair.
type Flag struct {
	Name     string
	Value    string
	HasValue bool
}

// BareFlag constructs a flag rendered without a value.
func BareFlag(name string) Flag {
	return Flag{Name: name}
}

// KeyValueFlag constructs a flag rendered as name=value.
func KeyValueFlag(name string, value string) Flag {
	return Flag{Name: name, Value: value, HasValue: true}
}

// Token renders the flag as a single argument.
func (flag Flag) Token() string {
	if !flag.HasValue {
		return flag.Name
	}
	return flag.Name + flagValueSeparatorConstant + flag.Value
}

// optionList keeps flags in insertion order with at most one entry per name.
type optionList struct {
	flags []Flag
}

func (list *optionList) set(flag Flag) {
	if index := list.indexOf(flag.Name); index >= 0 {
		list.flags[index] = flag
		return
	}
	list.flags = append(list.flags, flag)
}

func (list *optionList) remove(name string) {
	index := list.indexOf(name)
	if index < 0 {
		return
	}
	list.flags = append(list.flags[:index], list.flags[index+1:]...)
}

func (list *optionList) lookup(name string) (Flag, bool) {
	index := list.indexOf(name)
	if index < 0 {
		return Flag{}, false
	}
	return list.flags[index], true
}

func (list *optionList) indexOf(name string) int {
	for index := range list.flags {
		if list.flags[index].Name == name {
			return index
		}
	}
	return -1
}

func (list *optionList) snapshot() []Flag {
	return append([]Flag{}, list.flags...)
}

func (list *optionList) tokens() []string {
	tokens := make([]string, 0, len(list.flags))
	for _, flag := range list.flags {
		tokens = append(tokens, flag.Token())
	}
	return tokens
}
