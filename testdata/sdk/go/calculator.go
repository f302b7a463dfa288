package calculator

import "errors"

// Add returns the sum of a and b.
func Add(a int, b int) int { return a + b }

// Divide divides a by b.
//
// Deprecated: use DivideSafe instead.
func Divide(a int, b int) (int, error) {
	if b == 0 {
		return 0, errors.New("division by zero")
	}
	return a / b, nil
}

func subtract(a, b int) int { return a - b }

// Person is a named entity.
type Person struct {
	Name string
}

// GetName returns the person's name.
func (p *Person) GetName() string {
	return p.Name
}

type Greeter interface {
	Greet(name string) string
}

type ID = string

type internalState struct{}

func Sum(values ...int) (total int) {
	for _, v := range values {
		total += v
	}
	return total
}
