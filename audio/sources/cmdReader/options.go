package cmdReader

// Option is the type for a function option
type Option func(*Options)

// Options contains the parameters for spawning a command source.
type Options struct {
	TakesInput bool
	Dir        string
	Env        []string
}

// TakesInput is a functional option which pipes the standard input of the
// child process, so that data can be fed into it through Input().
func TakesInput(b bool) Option {
	return func(args *Options) {
		args.TakesInput = b
	}
}

// Dir is a functional option to set the working directory of the child
// process.
func Dir(dir string) Option {
	return func(args *Options) {
		args.Dir = dir
	}
}

// Env is a functional option to set the environment of the child process.
// Each entry is of the form "key=value".
func Env(env []string) Option {
	return func(args *Options) {
		args.Env = env
	}
}
