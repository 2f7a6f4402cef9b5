package validate

import (
	"context"
	"fmt"

	"github.com/distribution/reference"
)

// ImagesRule checks that every service can obtain an image: either a local
// build or a parseable, pinned image reference.
type ImagesRule struct{}

func (r *ImagesRule) Name() string { return "images" }

func (r *ImagesRule) Check(ctx context.Context, in *Input) []Diagnostic {
	if in.Result == nil || in.Result.Project == nil {
		return nil
	}

	var diags []Diagnostic
	for _, s := range in.Result.Project.Services {
		p := path("services", s.Name, "image")
		line := in.line("services", s.Name, "image")

		if s.Image == "" {
			if !s.UsesBuild() {
				diags = append(diags, newDiag(SeverityError, in.line("services", s.Name), path("services", s.Name),
					"service has neither build nor image"))
			}
			continue
		}

		named, err := reference.ParseNormalizedNamed(s.Image)
		if err != nil {
			diags = append(diags, newDiag(SeverityError, line, p,
				fmt.Sprintf("invalid image reference %q: %v", s.Image, err)))
			continue
		}

		if _, digested := named.(reference.Digested); digested {
			continue
		}
		tagged, ok := named.(reference.Tagged)
		switch {
		case !ok:
			diags = append(diags, newDiag(SeverityWarning, line, p,
				fmt.Sprintf("image %s has no tag and resolves to latest; pin a version", reference.FamiliarString(named))))
		case tagged.Tag() == "latest":
			diags = append(diags, newDiag(SeverityWarning, line, p,
				fmt.Sprintf("image %s uses the mutable latest tag; pin a version", reference.FamiliarString(named))))
		}
	}
	return diags
}
