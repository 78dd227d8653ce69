package voxstream

type Commands struct {
	app *App
}

func (cmd *Commands) ChangeState(newState State) *Commands {
	cmd.app.changeState(newState)
	return cmd
}

// Quit moves a stateful app to its final state and stops a stateless one
// after the current frame.
func (cmd *Commands) Quit() *Commands {
	cmd.app.changeState(cmd.app.finalState)
	return cmd
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) UseSystem(system systemScheduleBuilder) *Commands {
	cmd.app.UseSystem(system)
	return cmd
}

// Fail records an error that Run returns.
func (cmd *Commands) Fail(err error) *Commands {
	cmd.app.fail(err)
	return cmd
}
