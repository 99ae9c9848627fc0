package services

import (
	"strconv"
	"yatube/models"
)

const DefaultPageSize = 10

var PageSize = DefaultPageSize

// Page - страница ленты
type Page struct {
	Posts      []models.Post
	Group      *models.Group
	Author     *models.User
	Number     int
	NumPages   int
	TotalCount int64
	PerPage    int
}

func (p *Page) HasNext() bool {
	return p.Number < p.NumPages
}

func (p *Page) HasPrevious() bool {
	return p.Number > 1
}

func (p *Page) NextNumber() int {
	return p.Number + 1
}

func (p *Page) PreviousNumber() int {
	return p.Number - 1
}

func (p *Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// ParsePage разбирает параметр ?page=; нечисловое значение дает первую страницу
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return n
}

// NewPage прижимает номер страницы к диапазону [1, NumPages].
// Пустой результат - это одна пустая страница.
func NewPage(total int64, number, perPage int) *Page {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	numPages := int((total + int64(perPage) - 1) / int64(perPage))
	if numPages < 1 {
		numPages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}
	return &Page{
		Number:     number,
		NumPages:   numPages,
		TotalCount: total,
		PerPage:    perPage,
	}
}
