// Package output writes crawl results to disk.
//
// Each category gets its own directory under the info root:
//
//	Coubs-info/
//	  <category>/
//	    url_list.txt          original item URLs, one per line
//	    url_list_reposts.txt  repost URLs, only when there are reposts
//	    metadata.txt          formatted metadata blocks
//	    raw_metadata.json     raw records joined by ",\n"
//	    segments.json         segment bundles, when requested
//
// Files are written to a temporary name and renamed into place. The URL
// list goes last, so its presence means a category finished crawling.
package output
