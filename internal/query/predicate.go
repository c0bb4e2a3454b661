package query

import (
	"strings"

	"github.com/BuzzLyutic/task-tracker-api/internal/model"
)

// Имена полей, по которым строятся условия. В предикат попадают только
// эти константы, пользовательский ввод идет исключительно в значения.
const (
	FieldOwner       = "owner_id"
	FieldStatus      = "status"
	FieldPriority    = "priority"
	FieldTitle       = "title"
	FieldDescription = "description"
)

// Clause — замкнутый набор типизированных условий. Адаптер хранилища
// опускает их в свой язык запросов сам, здесь никакого I/O нет.
type Clause interface {
	clause()
}

// Equals — точное совпадение значения поля.
type Equals struct {
	Field string
	Value string
}

// PrefixAny — регистронезависимое совпадение по префиксу хотя бы
// в одном из полей. Text хранится как есть, экранирование — забота адаптера.
type PrefixAny struct {
	Fields []string
	Text   string
}

func (Equals) clause()    {}
func (PrefixAny) clause() {}

type Predicate struct {
	Clauses []Clause
}

// Build собирает предикат выборки задач. Условие по владельцу обязательное
// и приходит отдельным аргументом от аутентификации, а не из фильтра —
// подделать его через параметры запроса нельзя.
//
// Неизвестные значения status/priority не отбрасываются: они уходят
// в хранилище как есть и просто ничего не находят.
func Build(ownerID string, f model.TaskFilter) Predicate {
	clauses := []Clause{Equals{Field: FieldOwner, Value: ownerID}}

	if f.Status != nil {
		clauses = append(clauses, Equals{Field: FieldStatus, Value: *f.Status})
	}
	if f.Priority != nil {
		clauses = append(clauses, Equals{Field: FieldPriority, Value: *f.Priority})
	}
	if f.Search != nil {
		if text := strings.TrimSpace(*f.Search); text != "" {
			clauses = append(clauses, PrefixAny{
				Fields: []string{FieldTitle, FieldDescription},
				Text:   text,
			})
		}
	}

	return Predicate{Clauses: clauses}
}
