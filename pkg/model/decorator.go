package model

// Decorator enriches a form model after the upload fields have been projected
// into it and before a renderer sees it.
type Decorator interface {
	Decorate(*FormModel) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*FormModel) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(form *FormModel) error {
	if fn == nil {
		return nil
	}
	return fn(form)
}
