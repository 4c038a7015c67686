package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)

	registerNormalModeBindings(r)
	registerUserFilterBindings(r)
	registerCreatePostBindings(r)
	registerViewerBindings(r, ContextComments, "esc", "q", "c")
	registerViewerBindings(r, ContextHelp, "esc", "q", "?")
	registerViewerBindings(r, ContextError, "esc", "q", "e")

	return r
}

func registerNormalModeBindings(r *Registry) {
	r.Register(ContextNormal, "q", ActionQuit)
	r.RegisterMultiple(ContextNormal, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextNormal, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextNormal, "g", ActionGoToTopPrepare)
	r.RegisterMultiple(ContextNormal, []string{"gg", "home"}, ActionGoToTop)
	r.RegisterMultiple(ContextNormal, []string{"G", "end"}, ActionGoToBottom)
	r.RegisterMultiple(ContextNormal, []string{"tab", "shift+tab"}, ActionSwitchFocus)
	r.Register(ContextNormal, "enter", ActionSelect)
	r.Register(ContextNormal, "n", ActionCreatePost)
	r.Register(ContextNormal, "r", ActionRefreshUsers)
	r.Register(ContextNormal, "/", ActionFilterUsers)
	r.Register(ContextNormal, "y", ActionCopyPost)
	r.Register(ContextNormal, "?", ActionOpenHelp)
	r.Register(ContextNormal, "e", ActionShowError)
	r.Register(ContextNormal, "[", ActionScrollLogLeft)
	r.Register(ContextNormal, "]", ActionScrollLogRight)
}

func registerUserFilterBindings(r *Registry) {
	r.Register(ContextUserFilter, "enter", ActionTextSubmit)
	r.Register(ContextUserFilter, "esc", ActionTextCancel)
}

func registerCreatePostBindings(r *Registry) {
	r.RegisterMultiple(ContextCreatePost, []string{"tab", "shift+tab"}, ActionNextField)
	r.Register(ContextCreatePost, "ctrl+s", ActionSubmitPost)
	r.Register(ContextCreatePost, "esc", ActionCloseModal)
}

// registerViewerBindings sets up scrolling and closing for a modal viewer
func registerViewerBindings(r *Registry, context Context, closeKeys ...string) {
	r.RegisterMultiple(context, closeKeys, ActionCloseModal)
	r.RegisterMultiple(context, []string{"up", "k"}, ActionScrollUp)
	r.RegisterMultiple(context, []string{"down", "j"}, ActionScrollDown)
	r.RegisterMultiple(context, []string{"pgup", "ctrl+u"}, ActionPageUp)
	r.RegisterMultiple(context, []string{"pgdown", "ctrl+d"}, ActionPageDown)
	r.Register(context, "g", ActionGoToTopPrepare)
	r.RegisterMultiple(context, []string{"gg", "home"}, ActionGoToTop)
	r.RegisterMultiple(context, []string{"G", "end"}, ActionGoToBottom)
}
