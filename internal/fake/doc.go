// Package fake provides in-memory test doubles for the collaborator
// interfaces in internal/types.
//
// Every fake records its calls and accepts an optional function field that
// overrides the default behavior:
//
//	completer := &fake.Completer{
//	    CompleteFunc: func(ctx context.Context, system, human string) (string, error) {
//	        return "campus life, wellness", nil
//	    },
//	}
package fake
