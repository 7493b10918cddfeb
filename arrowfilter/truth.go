package arrowfilter

// Truth is a three-valued logic result. Comparisons against NULL are Unknown,
// and a row is selected only when its predicate is True.
type Truth int8

const (
	False Truth = iota
	True
	Unknown
)

// String returns the truth value name.
func (t Truth) String() string {
	switch t {
	case False:
		return "false"
	case True:
		return "true"
	default:
		return "unknown"
	}
}

func truth(b bool) Truth {
	if b {
		return True
	}
	return False
}

// Not negates t. Unknown stays Unknown.
func (t Truth) Not() Truth {
	switch t {
	case True:
		return False
	case False:
		return True
	}
	return Unknown
}

// And combines t and u: False wins, then Unknown.
func (t Truth) And(u Truth) Truth {
	if t == False || u == False {
		return False
	}
	if t == Unknown || u == Unknown {
		return Unknown
	}
	return True
}

// Or combines t and u: True wins, then Unknown.
func (t Truth) Or(u Truth) Truth {
	if t == True || u == True {
		return True
	}
	if t == Unknown || u == Unknown {
		return Unknown
	}
	return False
}
