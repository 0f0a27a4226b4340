package common

// ConstError is an error implementation allowing errors to be declared as
// immutable constants.
type ConstError string

func (e ConstError) Error() string {
	return string(e)
}
