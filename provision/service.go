package provision

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"siteprov/extract"
	"siteprov/geocode"
	"siteprov/mist"
	"siteprov/output"
	"siteprov/site"
	"siteprov/storage"
	"siteprov/workbook"
)

// Deps are the collaborators one provisioning run needs. Ledger and Geocoder
// are optional; a nil ledger skips run recording, a nil geocoder skips
// address resolution.
type Deps struct {
	Client   mist.Client
	Ledger   *storage.Ledger
	Geocoder geocode.Resolver
}

type Options struct {
	Extract extract.Options
	OrgID   string
}

// SiteResult is the outcome for one identifier. Identifiers are processed
// independently: an error here never aborts the siblings.
type SiteResult struct {
	Identifier    string
	Name          string
	SiteID        string
	Status        string
	Descriptor    site.Descriptor
	CSVLine       string
	Err           error
	Warnings      []extract.TemplateRowWarning
	GeoUnresolved bool
}

type Result struct {
	OrgID     string
	Created   int
	Conflicts int
	Failed    int
	Sites     []SiteResult
}

// Run provisions one site per identifier: extract, geocode, serialize,
// conflict-check against existing remote sites, create, push vars. Every
// run is recorded in the ledger when one is attached.
//
// Extraction happens up front for the whole batch so all serialized import
// lines share one column layout, then sites are created in input order.
func Run(ctx context.Context, deps Deps, book *workbook.Workbook, identifiers []string, opts Options) (*Result, error) {
	if deps.Client == nil {
		return nil, errors.New("provisioning requires an API client")
	}

	orgID, err := ResolveOrgID(ctx, deps.Client, opts.OrgID)
	if err != nil {
		return nil, err
	}

	existing, err := remoteNameSet(ctx, deps.Client, orgID)
	if err != nil {
		return nil, fmt.Errorf("list existing sites: %w", err)
	}

	extractions := make([]SiteResult, 0, len(identifiers))
	descriptors := make([]site.Descriptor, 0, len(identifiers))
	for _, identifier := range identifiers {
		siteResult := SiteResult{Identifier: identifier, Status: storage.StatusFailed}

		extracted, err := extract.Run(ctx, book, identifier, opts.Extract, deps.Geocoder)
		if err != nil {
			siteResult.Err = err
		} else {
			siteResult.Descriptor = extracted.Descriptor
			siteResult.Name = extracted.Descriptor.Name
			siteResult.Warnings = extracted.Warnings
			siteResult.GeoUnresolved = extracted.GeoUnresolved
			descriptors = append(descriptors, extracted.Descriptor)
		}
		extractions = append(extractions, siteResult)
	}
	extended := output.NeedsExtendedLayout(descriptors)

	result := &Result{OrgID: orgID, Sites: make([]SiteResult, 0, len(identifiers))}
	for _, siteResult := range extractions {
		if siteResult.Err == nil {
			siteResult.CSVLine = output.ImportLine(siteResult.Descriptor, extended)
			createSite(ctx, deps, &siteResult, orgID, existing)
		}

		switch siteResult.Status {
		case storage.StatusCreated:
			result.Created++
			existing[siteResult.Name] = struct{}{}
		case storage.StatusConflict:
			result.Conflicts++
		default:
			result.Failed++
		}
		result.Sites = append(result.Sites, siteResult)

		if deps.Ledger != nil {
			if err := recordRun(deps.Ledger, siteResult); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

// createSite pushes one extracted descriptor into the org, updating the
// result's status, site ID, and error in place.
func createSite(ctx context.Context, deps Deps, siteResult *SiteResult, orgID string, existing map[string]struct{}) {
	descriptor := siteResult.Descriptor

	if _, exists := existing[descriptor.Name]; exists {
		siteResult.Status = storage.StatusConflict
		siteResult.Err = fmt.Errorf("site %q already exists in org", descriptor.Name)
		return
	}

	created, err := deps.Client.CreateSite(ctx, orgID, mist.RequestFromDescriptor(descriptor))
	if err != nil {
		var apiErr *mist.APIError
		if errors.As(err, &apiErr) && apiErr.Kind == mist.KindConflict {
			siteResult.Status = storage.StatusConflict
		}
		siteResult.Err = err
		return
	}
	siteResult.SiteID = created.ID

	if len(descriptor.Vars) > 0 {
		if err := deps.Client.UpdateSiteVars(ctx, created.ID, descriptor.Vars); err != nil {
			siteResult.Err = fmt.Errorf("site %q created but vars update failed: %w", descriptor.Name, err)
			return
		}
	}

	siteResult.Status = storage.StatusCreated
}

// ResolveOrgID returns the explicit org when given, otherwise the first org
// the token can access.
func ResolveOrgID(ctx context.Context, client mist.Client, orgID string) (string, error) {
	if orgID != "" {
		return orgID, nil
	}
	orgs, err := client.SelfOrgs(ctx)
	if err != nil {
		return "", fmt.Errorf("list accessible orgs: %w", err)
	}
	if len(orgs) == 0 {
		return "", errors.New("no accessible orgs for this token; set mist.org_id")
	}
	return orgs[0].ID, nil
}

func remoteNameSet(ctx context.Context, client mist.Client, orgID string) (map[string]struct{}, error) {
	sites, err := client.ListSites(ctx, orgID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]struct{}, len(sites))
	for _, s := range sites {
		names[s.Name] = struct{}{}
	}
	return names, nil
}

func recordRun(ledger *storage.Ledger, siteResult SiteResult) error {
	// Provenance fields are zero when extraction itself failed.
	run := storage.Run{
		Identifier:  siteResult.Identifier,
		SiteName:    siteResult.Name,
		SourceSheet: siteResult.Descriptor.SourceSheet,
		SourceRow:   siteResult.Descriptor.SourceRow,
		SourceCol:   siteResult.Descriptor.SourceCol,
		CSVLine:     siteResult.CSVLine,
		Status:      siteResult.Status,
	}
	if siteResult.Err != nil {
		run.Error = siteResult.Err.Error()
	}
	if _, err := ledger.InsertRun(run); err != nil {
		return fmt.Errorf("record run for %s: %w", siteResult.Identifier, err)
	}
	return nil
}

// ReconcileResult compares the ledger's created sites against the org.
type ReconcileResult struct {
	LedgerCreated int
	RemoteSites   int
	Missing       []string // created per ledger, absent remotely
}

// Reconcile cross-checks provisioning history against the live org: a site
// recorded as created but missing remotely was deleted out of band.
func Reconcile(ctx context.Context, deps Deps, orgID string) (*ReconcileResult, error) {
	if deps.Client == nil || deps.Ledger == nil {
		return nil, errors.New("reconcile requires an API client and a ledger")
	}

	resolvedOrg, err := ResolveOrgID(ctx, deps.Client, orgID)
	if err != nil {
		return nil, err
	}
	remote, err := remoteNameSet(ctx, deps.Client, resolvedOrg)
	if err != nil {
		return nil, fmt.Errorf("list remote sites: %w", err)
	}

	runs, err := deps.Ledger.ListRuns()
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{RemoteSites: len(remote)}
	seen := make(map[string]struct{})
	for _, run := range runs {
		if run.Status != storage.StatusCreated || run.SiteName == "" {
			continue
		}
		if _, dup := seen[run.SiteName]; dup {
			continue
		}
		seen[run.SiteName] = struct{}{}
		result.LedgerCreated++
		if _, ok := remote[run.SiteName]; !ok {
			result.Missing = append(result.Missing, run.SiteName)
		}
	}
	sort.Strings(result.Missing)

	return result, nil
}
