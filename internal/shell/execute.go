package shell

import "fmt"

type Result struct {
	Message string
	Quit    bool
}

type Handlers struct {
	Add        func(AddArgs) (Result, error)
	Done       func(DoneArgs) (Result, error)
	Skip       func(SkipArgs) (Result, error)
	Edit       func(EditArgs) (Result, error)
	Deactivate func(DeactivateArgs) (Result, error)
	List       func(ListArgs) (Result, error)
	Tasks      func() (Result, error)
	Analytics  func() (Result, error)
	Help       func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missingHandler("add")
		}
		return handlers.Add(*cmd.Add)
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, missingHandler("done")
		}
		return handlers.Done(*cmd.Done)
	case TypeSkip:
		if handlers.Skip == nil {
			return Result{}, missingHandler("skip")
		}
		return handlers.Skip(*cmd.Skip)
	case TypeEdit:
		if handlers.Edit == nil {
			return Result{}, missingHandler("edit")
		}
		return handlers.Edit(*cmd.Edit)
	case TypeDeactivate:
		if handlers.Deactivate == nil {
			return Result{}, missingHandler("deactivate")
		}
		return handlers.Deactivate(*cmd.Deactivate)
	case TypeList:
		if handlers.List == nil {
			return Result{}, missingHandler("list")
		}
		return handlers.List(*cmd.List)
	case TypeTasks:
		if handlers.Tasks == nil {
			return Result{}, missingHandler("tasks")
		}
		return handlers.Tasks()
	case TypeAnalytics:
		if handlers.Analytics == nil {
			return Result{}, missingHandler("analytics")
		}
		return handlers.Analytics()
	case TypeHelp:
		if handlers.Help == nil {
			return Result{}, missingHandler("help")
		}
		return handlers.Help()
	case TypeQuit:
		return Result{Message: "bye", Quit: true}, nil
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missingHandler(name string) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: name + " handler not configured"}
}
