// Command articast turns an article text file into narrated audio with
// matching SRT subtitles, caching synthesized segments so interrupted or
// tweaked runs only regenerate what changed.
package main
