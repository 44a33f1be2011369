package storage

import "github.com/rotisserie/eris"

var (
	ErrEntityDoesNotExist     = eris.New("entity does not exist")
	ErrComponentNotOnEntity   = eris.New("component not on entity")
	ErrMustRegisterComponent  = eris.New("must register component")
	ErrComponentSchemaChanged = eris.New("component schema does not match previous registration")
)
