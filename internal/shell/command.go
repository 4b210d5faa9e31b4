package shell

import (
	"fmt"
	"strconv"
	"strings"

	"habitd/internal/model"
)

type Type string

const (
	TypeAdd        Type = "add"
	TypeDone       Type = "done"
	TypeSkip       Type = "skip"
	TypeEdit       Type = "edit"
	TypeDeactivate Type = "deactivate"
	TypeList       Type = "list"
	TypeTasks      Type = "tasks"
	TypeAnalytics  Type = "analytics"
	TypeHelp       Type = "help"
	TypeQuit       Type = "quit"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Name         string
	Period       model.Period
	Difficulty   model.Difficulty
	TargetDays   int
	ReminderTime string
}

type DoneArgs struct {
	ID      int64
	Mood    *int
	Minutes *int
	Notes   string
}

type SkipArgs struct {
	ID    int64
	Notes string
}

type EditArgs struct {
	ID     int64
	Name   *string
	Period *model.Period
}

type DeactivateArgs struct {
	ID int64
}

type ListArgs struct {
	Scope string // active, inactive or all
}

type Command struct {
	Type       Type
	Raw        string
	Add        *AddArgs
	Done       *DoneArgs
	Skip       *SkipArgs
	Edit       *EditArgs
	Deactivate *DeactivateArgs
	List       *ListArgs
}

// Parse turns one shell line into a typed Command. Option tokens use a
// key:value form, everything else is positional.
func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone:
		return parseDone(input, args)
	case TypeSkip:
		return parseSkip(input, args)
	case TypeEdit:
		return parseEdit(input, args)
	case TypeDeactivate:
		return parseDeactivate(input, args)
	case TypeList:
		return parseList(input, args)
	case TypeTasks:
		return Command{Type: TypeTasks, Raw: input}, nil
	case TypeAnalytics:
		return Command{Type: TypeAnalytics, Raw: input}, nil
	case TypeHelp:
		return Command{Type: TypeHelp, Raw: input}, nil
	case TypeQuit:
		return Command{Type: TypeQuit, Raw: input}, nil
	default:
		if head == "exit" || head == "q" {
			return Command{Type: TypeQuit, Raw: input}, nil
		}
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	out := AddArgs{Period: model.PeriodDaily}
	var nameParts []string
	for _, arg := range args {
		key, value, opt := splitOption(arg)
		if !opt {
			nameParts = append(nameParts, arg)
			continue
		}
		switch key {
		case "period":
			period := model.Period(strings.ToLower(value))
			if !period.IsValid() {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown period: %s", value)}
			}
			out.Period = period
		case "difficulty", "diff":
			difficulty := model.Difficulty(strings.ToLower(value))
			if !difficulty.IsValid() {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown difficulty: %s", value)}
			}
			out.Difficulty = difficulty
		case "target":
			n, err := strconv.Atoi(value)
			if err != nil {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "target must be a number"}
			}
			out.TargetDays = n
		case "remind":
			out.ReminderTime = value
		default:
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown option: %s", key)}
		}
	}
	out.Name = strings.TrimSpace(strings.Join(nameParts, " "))
	if out.Name == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a habit name"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

func parseDone(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "done requires a habit id"}
	}
	id, err := parseID(args[0])
	if err != nil {
		return Command{}, err
	}
	out := DoneArgs{ID: id}
	var noteParts []string
	for _, arg := range args[1:] {
		key, value, opt := splitOption(arg)
		if !opt {
			noteParts = append(noteParts, arg)
			continue
		}
		switch key {
		case "mood":
			n, err := strconv.Atoi(value)
			if err != nil {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "mood must be a number"}
			}
			out.Mood = &n
		case "min", "minutes":
			n, err := strconv.Atoi(value)
			if err != nil {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "minutes must be a number"}
			}
			out.Minutes = &n
		default:
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown option: %s", key)}
		}
	}
	out.Notes = strings.Join(noteParts, " ")
	return Command{Type: TypeDone, Raw: raw, Done: &out}, nil
}

func parseSkip(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "skip requires a habit id"}
	}
	id, err := parseID(args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeSkip, Raw: raw, Skip: &SkipArgs{ID: id, Notes: strings.Join(args[1:], " ")}}, nil
}

func parseEdit(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "edit requires a habit id"}
	}
	id, err := parseID(args[0])
	if err != nil {
		return Command{}, err
	}
	out := EditArgs{ID: id}
	var nameParts []string
	for _, arg := range args[1:] {
		key, value, opt := splitOption(arg)
		if opt && key == "period" {
			period := model.Period(strings.ToLower(value))
			if !period.IsValid() {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown period: %s", value)}
			}
			out.Period = &period
			continue
		}
		nameParts = append(nameParts, arg)
	}
	if len(nameParts) > 0 {
		name := strings.Join(nameParts, " ")
		out.Name = &name
	}
	if out.Name == nil && out.Period == nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "edit requires a new name or period"}
	}
	return Command{Type: TypeEdit, Raw: raw, Edit: &out}, nil
}

func parseDeactivate(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "deactivate requires a habit id"}
	}
	id, err := parseID(args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeDeactivate, Raw: raw, Deactivate: &DeactivateArgs{ID: id}}, nil
}

func parseList(raw string, args []string) (Command, error) {
	scope := "active"
	if len(args) > 0 {
		scope = strings.ToLower(args[0])
	}
	switch scope {
	case "active", "inactive", "all":
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown list scope: %s", scope)}
	}
	return Command{Type: TypeList, Raw: raw, List: &ListArgs{Scope: scope}}, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid habit id: %s", s)}
	}
	return id, nil
}

func splitOption(arg string) (key, value string, ok bool) {
	idx := strings.Index(arg, ":")
	if idx <= 0 || idx == len(arg)-1 {
		return "", "", false
	}
	return strings.ToLower(arg[:idx]), arg[idx+1:], true
}
