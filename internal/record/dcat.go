// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

// closedAccessURI is the rights-statement URI Zenodo uses for deposits
// without publicly retrievable files.
const closedAccessURI = "info:eu-repo/semantics/closedAccess"

// RDF models the DCAT/RDF-XML document Zenodo serves from its legacy
// export endpoint and embeds per record in the OAI-PMH feed. Only the
// elements the canonical record needs are mapped; everything else is
// ignored by the decoder.
type RDF struct {
	XMLName  xml.Name      `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# RDF"`
	Datasets []dcatDataset `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# Description"`
}

type dcatDataset struct {
	About         string          `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# about,attr"`
	Titles        []string        `xml:"http://purl.org/dc/terms/ title"`
	Issued        []string        `xml:"http://purl.org/dc/terms/ issued"`
	Keywords      []string        `xml:"http://www.w3.org/ns/dcat# keyword"`
	Creators      []dcatCreator   `xml:"http://purl.org/dc/terms/ creator"`
	IsPartOf      []rdfResource   `xml:"http://purl.org/dc/terms/ isPartOf"`
	Licenses      []rdfResource   `xml:"http://purl.org/dc/terms/ license"`
	VersionInfo   []string        `xml:"http://www.w3.org/2002/07/owl# versionInfo"`
	Relations     []rdfResource   `xml:"http://purl.org/dc/terms/ relation"`
	IsVersionOf   []rdfResource   `xml:"http://purl.org/dc/terms/ isVersionOf"`
	AccessRights  []dcatRights    `xml:"http://purl.org/dc/terms/ accessRights"`
	Distributions []dcatDistWrap  `xml:"http://www.w3.org/ns/dcat# distribution"`
}

// rdfResource captures an element whose payload is its rdf:resource
// attribute.
type rdfResource struct {
	Resource string `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# resource,attr"`
}

type dcatCreator struct {
	Agent dcatAgent `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# Description"`
}

type dcatAgent struct {
	Name       string `xml:"http://xmlns.com/foaf/0.1/ name"`
	GivenName  string `xml:"http://xmlns.com/foaf/0.1/ givenName"`
	FamilyName string `xml:"http://xmlns.com/foaf/0.1/ familyName"`
}

type dcatRights struct {
	Statement struct {
		About string `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# about,attr"`
	} `xml:"http://purl.org/dc/terms/ RightsStatement"`
}

type dcatDistWrap struct {
	Distribution struct {
		DownloadURLs []rdfResource `xml:"http://www.w3.org/ns/dcat# downloadURL"`
	} `xml:"http://www.w3.org/ns/dcat# Distribution"`
}

// ParseDCAT decodes a DCAT/RDF-XML document and builds the canonical
// record from it.
func ParseDCAT(data []byte) (*types.Record, error) {
	var doc RDF
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing DCAT document: %w", err)
	}
	return FromRDF(&doc)
}

// FromRDF builds the canonical record from a decoded DCAT document.
// The deposit is described by the first rdf:Description carrying an
// rdf:about attribute, which holds the DOI.
func FromRDF(doc *RDF) (*types.Record, error) {
	var ds *dcatDataset
	for i := range doc.Datasets {
		if doc.Datasets[i].About != "" {
			ds = &doc.Datasets[i]
			break
		}
	}
	if ds == nil {
		return nil, fmt.Errorf("%w: no rdf:Description with rdf:about", ErrMissingField)
	}
	if len(ds.Titles) == 0 {
		return nil, fmt.Errorf("%w: dct:title in %s", ErrMissingField, ds.About)
	}
	if len(ds.Issued) == 0 {
		return nil, fmt.Errorf("%w: dct:issued in %s", ErrMissingField, ds.About)
	}

	rec := types.Record{
		DOI:      ds.About,
		Title:    ds.Titles[0],
		Year:     strings.SplitN(ds.Issued[0], "-", 2)[0],
		Keywords: ds.Keywords,
	}

	for _, d := range ds.Distributions {
		for _, u := range d.Distribution.DownloadURLs {
			if u.Resource != "" {
				rec.DownloadURLs = append(rec.DownloadURLs, u.Resource)
			}
		}
	}
	for _, p := range ds.IsPartOf {
		rec.Communities = append(rec.Communities, communityFromURL(p.Resource))
	}
	if len(ds.Licenses) > 0 {
		rec.License = ds.Licenses[0].Resource
	}
	if len(ds.VersionInfo) > 0 {
		rec.Version = strings.TrimSpace(ds.VersionInfo[0])
	}

	for _, c := range ds.Creators {
		switch {
		case c.Agent.FamilyName != "" && c.Agent.GivenName != "":
			rec.Creators = append(rec.Creators, c.Agent.FamilyName+", "+c.Agent.GivenName)
		case c.Agent.Name != "":
			rec.Creators = append(rec.Creators, c.Agent.Name)
		default:
			return nil, fmt.Errorf("%w: creator without family name or name in %s",
				ErrMissingField, ds.About)
		}
	}

	for _, r := range ds.AccessRights {
		if r.Statement.About == closedAccessURI {
			rec.ClosedAccess = true
			break
		}
	}
	for _, r := range ds.Relations {
		if gh := ParseGithubURL(r.Resource); gh != nil {
			rec.GithubRepos = gh
			break
		}
	}
	for _, r := range ds.IsVersionOf {
		if m := types.ZenodoDOIPattern.FindStringSubmatch(r.Resource); m != nil {
			rec.ConceptDOI = fmt.Sprintf(types.ZenodoDOIFormat, m[1])
		}
	}

	return New(rec)
}

// communityFromURL extracts the community id from a Zenodo
// "communities/{id}" URL, or returns "" for anything else.
func communityFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || strings.TrimPrefix(u.Host, "www.") != "zenodo.org" {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "communities" {
		return parts[1]
	}
	return ""
}
