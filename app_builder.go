package voxstream

type AppBuilder struct {
	app     *App
	modules []Module
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{app: newApp()}
}

func (b *AppBuilder) UseStates(initialState State, finalState State) *AppBuilder {
	b.app.stateful = true
	b.app.initialState = initialState
	b.app.finalState = finalState

	return b
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

// MaxFrames stops the app after n frames. Zero runs until quit.
func (b *AppBuilder) MaxFrames(n uint64) *AppBuilder {
	b.app.maxFrame = n

	return b
}

// Build creates the default stages and installs the modules in order.
// A module that fails to install records its error on the app; the
// remaining modules still install, and Run reports the errors.
func (b *AppBuilder) Build() *App {
	app := b.app
	commands := &Commands{app: app}

	for _, stage := range defaultStages {
		if !app.hasStage(stage.Name) {
			app.stages = append(app.stages, stage)
			app.initStage(stage)
		}
	}

	for _, module := range b.modules {
		module.Install(app, commands)
	}

	return app
}
