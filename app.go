package voxstream

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

type Module interface {
	Install(app *App, cmd *Commands)
}

type App struct {
	stateful           bool
	stateTransitioning bool
	initialState       State
	finalState         State
	nextState          State
	state              State
	stages             []Stage
	systems            map[string]map[State]map[statePhase][]systemFn
	systemsStateless   map[string][]systemFn
	resources          map[reflect.Type]any

	errs     []error
	running  bool
	frames   uint64
	maxFrame uint64
}

func newApp() *App {
	return &App{
		resources:        make(map[reflect.Type]any),
		systems:          make(map[string]map[State]map[statePhase][]systemFn),
		systemsStateless: make(map[string][]systemFn),
	}
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

// Run executes the schedule until the final state is reached. Errors raised
// while installing modules abort the run before any system executes.
// A stateless app runs until a system calls Commands.Quit.
func (app *App) Run() error {
	if err := app.Err(); err != nil {
		return err
	}

	app.running = true
	defer func() { app.running = false }()

	logger := app.Logger()
	if app.stateful {
		logger.Debugf("running in stateful mode")
		app.state = app.initialState
		app.callSystems(app.state, enter)
	} else {
		logger.Debugf("running in stateless mode")
	}

	for {
		app.callSystems(app.state, execute)
		app.frames++

		if app.maxFrame > 0 && app.frames >= app.maxFrame && !app.stateTransitioning {
			app.changeState(app.finalState)
		}

		if app.stateTransitioning {
			app.stateTransitioning = false
			if !app.stateful {
				break
			}
			app.executeChangeState(app.nextState)
		}

		if app.stateful && app.state == app.finalState {
			app.callSystems(app.state, exit)
			break
		}
	}

	return app.Err()
}

// Frames is the number of completed execute passes.
func (app *App) Frames() uint64 {
	return app.frames
}

// Err joins every error reported through fail.
func (app *App) Err() error {
	return errors.Join(app.errs...)
}

// fail records err. While running it also requests the final state so
// shutdown systems still release their resources.
func (app *App) fail(err error) {
	if err == nil {
		return
	}
	app.errs = append(app.errs, err)
	if app.running && !app.stateTransitioning {
		app.changeState(app.finalState)
	}
}

func (app *App) callSystems(state State, phase statePhase) {
	for _, stage := range app.stages {
		// Always-run systems go first, and only while executing
		if execute == phase {
			for _, system := range app.systemsStateless[stage.Name] {
				app.callSystem(system)
			}
		}

		if app.stateful {
			if systemsInStage, ok := app.systems[stage.Name]; ok {
				if systemsInState, ok := systemsInStage[state]; ok {
					for _, system := range systemsInState[phase] {
						app.callSystem(system)
					}
				}
			}
		}
	}
}

func (app *App) changeState(newState State) {
	app.nextState = newState
	app.stateTransitioning = true
}

func (app *App) executeChangeState(newState State) {
	app.callSystems(app.state, exit)
	app.state = newState
	app.callSystems(app.state, enter)
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// hasResource reports whether a resource of T's pointee type is present.
func hasResource[T any](app *App) bool {
	_, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	return ok
}

// getResource returns the registered *T, or nil.
func getResource[T any](app *App) *T {
	r, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil
	}
	return r.(*T)
}

func (app *App) callSystem(system systemFn) {
	app.callSystemInternal(system)
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystemInternal(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			app.unresolved(systemType, systemValue, argType)
		}
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			resourceVal := reflect.ValueOf(resource)
			args[i] = reflect.NewAt(underlyingType, resourceVal.UnsafePointer())
		} else {
			app.unresolved(systemType, systemValue, argType)
		}
	}
	systemValue.Call(args)
}

func (app *App) unresolved(systemType reflect.Type, systemValue reflect.Value, argType reflect.Type) {
	panic(fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
		runtime.FuncForPC(systemValue.Pointer()).Name(),
		fmt.Sprint(systemType),
		fmt.Sprint(argType),
	))
}
