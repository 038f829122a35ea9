package programs

import (
	"strconv"
	"strings"

	"nachos/pkg/userlib"
)

// MaxSortSize is the largest array quicksort accepts.
const MaxSortSize = 100

// maxAttempts bounds the re-prompts for one invalid answer.
const maxAttempts = 5

// quicksort reads an array from the console, sorts it in the requested
// order, prints it and stores it in quicksort.txt.
func quicksort(p *userlib.Proc) int {
	n := -1
	for tries := 0; n < 1 || n > MaxSortSize; tries++ {
		if tries == maxAttempts {
			return 1
		}
		p.PrintString("Enter n (1 <= n <= 100): ")
		n = p.ReadInt()
		if n < 1 || n > MaxSortSize {
			p.PrintString("n must be an integer between 1 and 100 (inclusive), please try again\n")
		}
	}

	a := make([]int, n)
	for i := range a {
		p.PrintString("Enter element [" + strconv.Itoa(i) + "]: ")
		a[i] = p.ReadInt()
	}

	order := 0
	for tries := 0; order != 1 && order != 2; tries++ {
		if tries == maxAttempts {
			return 1
		}
		p.PrintString("Enter type of sorting (1: increasing, 2: decreasing): ")
		order = p.ReadInt()
		if order != 1 && order != 2 {
			p.PrintString("Wrong input, please try again\n")
		}
	}

	sortInts(a, order == 2)

	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = strconv.Itoa(v)
	}
	out := strings.Join(parts, " ")
	p.PrintString("Sorted array: " + out + "\n")

	p.CreateFile("quicksort.txt")
	id := p.Open("quicksort.txt", userlib.OpenReadWrite)
	if id == -1 {
		p.PrintString("Can't open file\n")
		return 1
	}
	p.WriteString(out, id)
	p.Close(id)
	return 0
}

// sortInts sorts a in place with an iterative quicksort.
func sortInts(a []int, desc bool) {
	less := func(x, y int) bool {
		if desc {
			return x > y
		}
		return x < y
	}

	stack := []int{0, len(a) - 1}
	for len(stack) > 0 {
		right := stack[len(stack)-1]
		left := stack[len(stack)-2]
		stack = stack[:len(stack)-2]
		if left >= right {
			continue
		}

		pivot := a[right]
		i := left
		for j := left; j < right; j++ {
			if less(a[j], pivot) {
				a[i], a[j] = a[j], a[i]
				i++
			}
		}
		a[i], a[right] = a[right], a[i]

		stack = append(stack, left, i-1, i+1, right)
	}
}
