package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/go-github/v82/github"
	"go.uber.org/zap"

	"github.com/martenlienen/gogs-github-mirror/internal/repository"
)

const (
	// DefaultAPIURLConstant is the public GitHub REST API root.
	DefaultAPIURLConstant             = "https://api.github.com/"
	initialCollectionPathConstant     = "user/repos"
	perPageQueryParameterConstant     = "per_page"
	trailingSlashConstant             = "/"
	logMessagePageFetchedConstant     = "Source repository page fetched"
	logMessageRepeatedCursorConstant  = "Source pagination revisited a page; stopping"
	logMessageListingCompleteConstant = "Source repository listing complete"
	logFieldPageURLConstant           = "page_url"
	logFieldPageSizeConstant          = "page_size"
	logFieldPageCountConstant         = "pages"
	logFieldRepositoryCountConstant   = "repositories"
	logFieldNextPageConstant          = "next_page"
)

// Configuration describes the source API endpoint.
type Configuration struct {
	APIURL  string
	PerPage int
}

// ListResult holds the accumulated repositories and the number of pages requested.
type ListResult struct {
	Repositories []repository.Descriptor
	PagesFetched int
}

// Lister fetches every repository visible to the authenticated account.
type Lister struct {
	client      *github.Client
	initialPage string
	logger      *zap.Logger
}

// NewLister builds a Lister around an HTTP client that already attaches the source credentials.
func NewLister(logger *zap.Logger, httpClient *http.Client, configuration Configuration) (*Lister, error) {
	if httpClient == nil {
		return nil, ErrClientNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	apiURL := strings.TrimSpace(configuration.APIURL)
	if len(apiURL) == 0 {
		apiURL = DefaultAPIURLConstant
	}
	if !strings.HasSuffix(apiURL, trailingSlashConstant) {
		apiURL += trailingSlashConstant
	}
	baseURL, parseError := url.Parse(apiURL)
	if parseError != nil {
		return nil, fmt.Errorf(invalidBaseURLErrorTemplateConstant, configuration.APIURL, parseError)
	}

	client := github.NewClient(httpClient)
	client.BaseURL = baseURL

	initialPage := initialCollectionPathConstant
	if configuration.PerPage > 0 {
		initialPage += "?" + url.Values{perPageQueryParameterConstant: []string{strconv.Itoa(configuration.PerPage)}}.Encode()
	}

	return &Lister{client: client, initialPage: initialPage, logger: logger}, nil
}

// ListRepositories follows the "next" links starting at the user repository collection
// and returns every repository in API order. A page without pagination metadata ends the
// listing; a cursor that was already requested ends it as well so no page is fetched twice.
// Failed requests and non-2xx responses abort the listing with a ListingError.
func (lister *Lister) ListRepositories(executionContext context.Context) (ListResult, error) {
	result := ListResult{Repositories: []repository.Descriptor{}}
	requestedPages := make(map[string]struct{})

	cursor := lister.initialPage
	for len(cursor) > 0 {
		request, requestError := lister.client.NewRequest(http.MethodGet, cursor, nil)
		if requestError != nil {
			return ListResult{}, ListingError{PageURL: cursor, Cause: fmt.Errorf(requestCreationErrorTemplateConstant, cursor, requestError)}
		}

		pageURL := request.URL.String()
		if _, requested := requestedPages[pageURL]; requested {
			lister.logger.Warn(logMessageRepeatedCursorConstant, zap.String(logFieldPageURLConstant, pageURL))
			break
		}
		requestedPages[pageURL] = struct{}{}

		var page []*github.Repository
		response, responseError := lister.client.Do(executionContext, request, &page)
		result.PagesFetched++
		if responseError != nil {
			return ListResult{}, ListingError{PageURL: pageURL, Cause: responseError}
		}

		for _, sourceRepository := range page {
			result.Repositories = append(result.Repositories, descriptorFromRepository(sourceRepository))
		}

		cursor = NextCursor(response.Header)
		lister.logger.Debug(
			logMessagePageFetchedConstant,
			zap.String(logFieldPageURLConstant, pageURL),
			zap.Int(logFieldPageSizeConstant, len(page)),
			zap.String(logFieldNextPageConstant, cursor),
		)
	}

	lister.logger.Info(
		logMessageListingCompleteConstant,
		zap.Int(logFieldPageCountConstant, result.PagesFetched),
		zap.Int(logFieldRepositoryCountConstant, len(result.Repositories)),
	)

	return result, nil
}

func descriptorFromRepository(sourceRepository *github.Repository) repository.Descriptor {
	if sourceRepository == nil {
		return repository.Descriptor{}
	}
	return repository.Descriptor{
		Name:        sourceRepository.GetName(),
		CloneURL:    sourceRepository.GetCloneURL(),
		Private:     sourceRepository.GetPrivate(),
		Description: sourceRepository.Description,
		OwnerLogin:  sourceRepository.GetOwner().GetLogin(),
		IsFork:      sourceRepository.GetFork(),
	}
}
